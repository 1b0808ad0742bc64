// Package identity resolves a sample's identity from a test file's name.
//
// Lab filenames follow the convention
// <prefix>-CC-<cell>_<mass>_<protocol marker>..., where the prefix carries
// the LIMS sample number and the second underscore-delimited token is the
// active-material mass in grams. Both extractions are pattern based and the
// mass extraction is deliberately best-effort.
package identity

import (
	"regexp"
	"strconv"
	"strings"

	apperrors "camcli/internal/errors"
)

var (
	// sampleIDPattern matches the primary <prefix>-CC-<digits> convention.
	// The full match is the sample ID.
	sampleIDPattern = regexp.MustCompile(`^(.*?)(CC-\d{1,2})`)

	// sampleIDFallback captures everything preceding a -CC marker for
	// filenames where the cell number does not directly follow CC-.
	sampleIDFallback = regexp.MustCompile(`^(.*?)-CC`)

	// baseNamePattern matches <prefix>(-<suffix>)-<protocol marker> and is
	// used for output workbook base names, not per-row sample IDs.
	baseNamePattern = regexp.MustCompile(`^(QCL-\d+|Lims-\d+)(.*?)-(Cycle-Life|Formation-Capacity-Check|Formation)`)
)

// DefaultMass is the active-material mass assumed when none can be parsed
// from the filename.
const DefaultMass = 1.0

// ResolveID derives the sample identifier from a filename (without
// extension). It tries the primary <prefix>-CC-<digits> pattern first and
// falls back to everything preceding a -CC marker. An error means the
// filename carries no recognizable sample ID; the caller decides whether to
// skip the file.
func ResolveID(filename string) (string, error) {
	if m := sampleIDPattern.FindStringSubmatch(filename); m != nil {
		return m[0], nil
	}
	if m := sampleIDFallback.FindStringSubmatch(filename); m != nil {
		return m[1], nil
	}
	return "", apperrors.NewNotFoundError("sample ID in filename").WithContext("filename", filename)
}

// ExtractMass parses the active-material mass from the second
// underscore-delimited token of the filename. It never fails: on any parse
// problem it returns DefaultMass and false so callers can distinguish a
// fallback from a sample that genuinely weighs one gram.
func ExtractMass(filename string) (float64, bool) {
	parts := strings.Split(filename, "_")
	if len(parts) < 2 {
		return DefaultMass, false
	}
	mass, err := strconv.ParseFloat(parts[1], 64)
	if err != nil || mass <= 0 {
		return DefaultMass, false
	}
	return mass, true
}

// BaseName extracts the output base name from a filename: the sample prefix
// and suffix with the trailing protocol marker stripped. The second return
// is false when the filename does not follow the convention.
func BaseName(filename string) (string, bool) {
	m := baseNamePattern.FindStringSubmatch(filename)
	if m == nil {
		return "", false
	}
	base := strings.TrimSuffix(m[0], m[3])
	return strings.TrimSuffix(base, "-"), true
}

// BaseNames applies BaseName to a list of filenames. Entries that do not
// match the convention are dropped from the result rather than reported.
func BaseNames(filenames []string) []string {
	names := make([]string, 0, len(filenames))
	for _, filename := range filenames {
		if base, ok := BaseName(filename); ok {
			names = append(names, base)
		}
	}
	return names
}
