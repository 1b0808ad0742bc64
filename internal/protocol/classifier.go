// Package protocol classifies test files by experiment protocol based on
// the markers the lab embeds in filenames.
package protocol

import (
	"context"
	"log/slog"
	"strings"

	apperrors "camcli/internal/errors"
	"camcli/pkg/contracts/domain"
)

// Filename markers, checked in order. The formation + capacity check marker
// is more specific than the plain formation marker and must be tested
// before it.
const (
	markerOCV                    = "OCV"
	markerCycleLife              = "Life"
	markerFormationCapacityCheck = "Formation-Capacity-Check"
	markerFormation              = "Formation"
)

// Prompt resolves a protocol for a filename the classifier cannot identify
// on its own, typically by asking the operator. It is injected so the core
// stays testable without an interactive environment.
type Prompt func(ctx context.Context, filename string) (domain.Protocol, error)

// Classifier determines the experiment protocol from a filename.
type Classifier struct {
	logger *slog.Logger
	prompt Prompt
}

// NewClassifier creates a classifier. prompt may be nil; unrecognizable
// filenames then fail instead of asking for disambiguation, which is the
// right behavior for unattended batch runs.
func NewClassifier(logger *slog.Logger, prompt Prompt) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{logger: logger, prompt: prompt}
}

// Classify determines the protocol for a filename. Open-circuit-voltage
// only tests are not supported and are rejected outright.
func (c *Classifier) Classify(ctx context.Context, filename string) (domain.Protocol, error) {
	switch {
	case strings.Contains(filename, markerOCV):
		return "", apperrors.NewUnsupportedError("open circuit potential tests are not supported").
			WithContext("filename", filename)
	case strings.Contains(filename, markerCycleLife):
		return domain.ProtocolCycleLife, nil
	case strings.Contains(filename, markerFormationCapacityCheck):
		return domain.ProtocolFormationCapacityCheck, nil
	case strings.Contains(filename, markerFormation):
		return domain.ProtocolFormation, nil
	}

	if c.prompt == nil {
		return "", apperrors.NewValidationError("cannot identify protocol from filename").
			WithContext("filename", filename)
	}

	c.logger.InfoContext(ctx, "protocol not recognizable from filename, prompting",
		slog.String("filename", filename))

	proto, err := c.prompt(ctx, filename)
	if err != nil {
		return "", apperrors.NewValidationError("protocol disambiguation failed").
			WithContext("filename", filename).WithContext("cause", err.Error())
	}
	if !proto.Valid() {
		return "", apperrors.NewValidationError("prompt returned unknown protocol").
			WithContext("filename", filename).WithContext("protocol", string(proto))
	}
	return proto, nil
}
