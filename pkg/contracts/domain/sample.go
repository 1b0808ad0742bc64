package domain

import "fmt"

// Protocol identifies the experiment type encoded in a test file's name.
// It is a closed set; downstream feature selection dispatches on it rather
// than re-inspecting filenames.
type Protocol string

const (
	ProtocolFormation              Protocol = "FORMATION"
	ProtocolFormationCapacityCheck Protocol = "FORMATION_CAPACITY_CHECK"
	ProtocolCycleLife              Protocol = "CYCLE_LIFE"
)

// Valid reports whether p is one of the supported protocols.
func (p Protocol) Valid() bool {
	switch p {
	case ProtocolFormation, ProtocolFormationCapacityCheck, ProtocolCycleLife:
		return true
	}
	return false
}

// ParseProtocol converts the short codes used in lab worksheets (F, FC, CL)
// to a Protocol. It also accepts the canonical enum strings.
func ParseProtocol(code string) (Protocol, error) {
	switch code {
	case "F", string(ProtocolFormation):
		return ProtocolFormation, nil
	case "FC", string(ProtocolFormationCapacityCheck):
		return ProtocolFormationCapacityCheck, nil
	case "CL", string(ProtocolCycleLife):
		return ProtocolCycleLife, nil
	}
	return "", fmt.Errorf("unknown protocol code %q", code)
}

// Sample describes one test file's identity, resolved from its filename.
// Constructed once per input file at the start of processing; immutable
// thereafter.
type Sample struct {
	ID       string   `json:"id" validate:"required"`
	Mass     float64  `json:"mass" validate:"gt=0"` // grams of active material
	Protocol Protocol `json:"protocol" validate:"required"`

	// MassExtracted distinguishes "mass parsed from the filename" from the
	// 1.0 g fallback, which is otherwise indistinguishable from a real
	// one-gram sample.
	MassExtracted bool `json:"mass_extracted"`
}
