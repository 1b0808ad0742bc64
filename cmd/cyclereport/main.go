package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"camcli/internal/batch"
	"camcli/internal/config"
	"camcli/internal/exporter"
	"camcli/internal/files"
	"camcli/internal/identity"
	"camcli/internal/infrastructure"
	"camcli/internal/protocol"
)

func main() {
	inDir := flag.String("in", "", "input directory for cloud-format test files (defaults to data/input relative to executable)")
	outDir := flag.String("out", "", "output directory for reports (defaults to data/reports relative to executable)")
	format := flag.String("format", "", "summary report format: xlsx or csv (default xlsx)")
	workers := flag.Int("workers", 0, "number of files processed concurrently (default 1)")
	checkpoint := flag.Int("checkpoint", 0, "retention checkpoint cycle reported in the summary (default 50)")
	maxCycle := flag.Int("max-cycle", 0, "last cycle of the cycle-life detail curves (default 50)")
	minKB := flag.Int("min-kb", 0, "drop input files smaller than this many KB")
	maxKB := flag.Int("max-kb", 0, "drop input files of at least this many KB (0 disables)")
	interactive := flag.Bool("interactive", false, "ask on the console when a filename's protocol cannot be identified")
	flag.Parse()

	// Initialize paths first to get default directories
	paths, err := config.GetPaths()
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	if *inDir == "" {
		*inDir = paths.InputDir
	}

	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	applyFlags(cfg, *format, *workers, *checkpoint, *maxCycle, *minKB, *maxKB)
	*outDir = resolveOutputDir(*outDir, cfg, paths)
	if cfg.Logging.FilePath == "" {
		cfg.Logging.FilePath = paths.GetLogPath("cyclereport.log")
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx := infrastructure.WithRunID(context.Background(), uuid.NewString())

	logger.InfoContext(ctx, "starting cycling report generation",
		slog.String("input_dir", *inDir),
		slog.String("output_dir", *outDir),
		slog.String("format", cfg.Export.Format),
		slog.Int("workers", cfg.Batch.Workers))

	discovery := files.NewDiscovery(paths.ExecutableDir)
	discovered, err := discovery.FindCloudFiles(*inDir)
	if err != nil {
		logger.ErrorContext(ctx, "failed to discover input files", slog.String("error", err.Error()))
		os.Exit(1)
	}

	candidates := files.FilterOCV(files.FilterBySize(discovered, cfg.Batch.MinFileSizeKB, cfg.Batch.MaxFileSizeKB))
	logger.InfoContext(ctx, "input files discovered",
		slog.Int("found", len(discovered)),
		slog.Int("after_filters", len(candidates)))

	if len(candidates) == 0 {
		logger.WarnContext(ctx, "no input files to process", slog.String("input_dir", *inDir))
		fmt.Println("No input files to process")
		return
	}

	paths.ReportsDir = *outDir
	paths.DetailDir = filepath.Join(*outDir, "Cycle_Life_All_Data")

	inputPaths := make([]string, 0, len(candidates))
	for _, file := range candidates {
		inputPaths = append(inputPaths, file.Path)
	}

	var prompt protocol.Prompt
	if *interactive {
		prompt = protocol.ConsolePrompt(os.Stdin, os.Stdout)
		if cfg.Batch.Workers > 1 {
			// Concurrent workers would interleave console prompts.
			logger.WarnContext(ctx, "interactive mode runs sequentially",
				slog.Int("requested_workers", cfg.Batch.Workers))
			cfg.Batch.Workers = 1
		}
	}
	classifier := protocol.NewClassifier(logger, prompt)
	orchestrator := batch.NewOrchestrator(logger, nil, classifier, cfg.Batch)

	result, err := orchestrator.Run(ctx, inputPaths)
	if err != nil {
		logger.ErrorContext(ctx, "batch run aborted", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if len(result.Processed) == 0 {
		logger.WarnContext(ctx, "no files processed successfully",
			slog.Int("failed", len(result.Failures)))
		fmt.Println(outcomeTable(result))
		os.Exit(1)
	}

	base := reportBaseName(result)

	if err := writeReports(cfg, paths, base, result, logger); err != nil {
		logger.ErrorContext(ctx, "failed to write reports", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "reports written",
		slog.String("base_name", base),
		slog.Int("summary_rows", result.Summary.NumRows()),
		slog.Int("detail_rows", result.Detail.NumRows()))

	fmt.Println(outcomeTable(result))
	fmt.Printf("Processed %d of %d files, reports in %s\n",
		len(result.Processed), len(inputPaths), *outDir)
}

// applyFlags folds non-zero command line values into the configuration;
// flags win over environment and file settings.
func applyFlags(cfg *config.Config, format string, workers, checkpoint, maxCycle, minKB, maxKB int) {
	if format != "" {
		cfg.Export.Format = format
	}
	if workers > 0 {
		cfg.Batch.Workers = workers
	}
	if checkpoint > 0 {
		cfg.Batch.CheckpointCycle = checkpoint
	}
	if maxCycle > 0 {
		cfg.Batch.DetailMaxCycle = maxCycle
	}
	if minKB > 0 {
		cfg.Batch.MinFileSizeKB = minKB
	}
	if maxKB > 0 {
		cfg.Batch.MaxFileSizeKB = maxKB
	}
}

// resolveOutputDir picks the report directory: the -out flag wins, then
// the configured export directory, then the executable-relative default.
func resolveOutputDir(flagValue string, cfg *config.Config, paths *config.Paths) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg.Export.Dir != "" {
		return cfg.Export.Dir
	}
	return paths.ReportsDir
}

// reportBaseName derives the output file base name from the last processed
// file, falling back to its sample ID when the filename does not follow
// the full naming convention.
func reportBaseName(result *batch.Result) string {
	last := result.Processed[len(result.Processed)-1]
	if base, ok := identity.BaseName(files.Stem(last.Path)); ok {
		return base
	}
	return last.Sample.ID
}

// writeReports emits the summary report and, when cycle-life files were
// present, the detail workbook. Any write failure here is fatal to the
// run.
func writeReports(cfg *config.Config, paths *config.Paths, base string, result *batch.Result, logger *slog.Logger) error {
	workbooks := exporter.NewWorkbookWriter(logger)

	switch cfg.Export.Format {
	case "csv":
		csvWriter := exporter.NewCSVWriter(logger)
		if err := csvWriter.WriteSummary(paths.GetReportPath(base+"_summary.csv"), result.SampleIDs, result.Summary); err != nil {
			return err
		}
	default:
		if err := workbooks.WriteSummary(paths.GetReportPath(base+"_summary.xlsx"), result.SampleIDs, result.Summary); err != nil {
			return err
		}
	}

	if !result.Detail.Empty() {
		return workbooks.WriteDetail(paths.GetDetailPath(base+"_data.xlsx"), result.DetailSampleIDs(), result.Detail)
	}
	return nil
}

// outcomeTable renders the per-file outcome summary printed at the end of
// a run.
func outcomeTable(result *batch.Result) string {
	headers := []string{"File", "Sample ID", "Protocol", "Status"}
	rows := make([][]string, 0, len(result.Processed)+len(result.Failures))

	for _, p := range result.Processed {
		rows = append(rows, []string{
			filepath.Base(p.Path),
			p.Sample.ID,
			string(p.Sample.Protocol),
			"ok",
		})
	}
	for _, f := range result.Failures {
		rows = append(rows, []string{
			filepath.Base(f.Path),
			"",
			"",
			"failed: " + f.Err.Error(),
		})
	}

	return renderTable(headers, rows)
}
