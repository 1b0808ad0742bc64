// Package features reduces a normalized cycling time-series to the scalar
// and derived features reported per sample: capacities, coulombic
// efficiency, open circuit potential, and per-cycle retention and drift
// curves. All extraction functions are stateless and depend only on their
// explicit inputs; a FeatureSet is built per file and returned to the
// caller.
package features

import (
	"fmt"
	"math"
)

// Feature names double as report column headers, units embedded.
const (
	KeyOpenCircuitPotential             = "Open Circuit Potential (V)"
	KeyInitialChargeCapacity            = "Initial Charge Capacity (mAh)"
	KeyInitialSpecificChargeCapacity    = "Initial Specific Charge Capacity (mAh/g)"
	KeyInitialDischargeCapacity         = "Initial Discharge Capacity (mAh)"
	KeyInitialSpecificDischargeCapacity = "Initial Specific Discharge Capacity (mAh/g)"
	KeyInitialCoulombicEfficiency       = "Initial Coulombic Efficiency (%)"
)

// RetentionKey returns the feature name for a cycle's capacity retention.
func RetentionKey(cycle int) string {
	return fmt.Sprintf("Retention Cycle %d (%%)", cycle)
}

// DriftKey returns the feature name for a cycle's discharge capacity drift
// relative to the previously processed cycle.
func DriftKey(cycle int) string {
	return fmt.Sprintf("Retention Difference for %d (%%)", cycle)
}

// FeatureSet is an insertion-ordered feature accumulator. Extraction steps
// append to it in turn; later steps read values inserted by earlier ones,
// so call order matters and is enforced by the extraction functions
// themselves.
type FeatureSet struct {
	keys   []string
	values map[string]float64
}

// NewFeatureSet creates an empty feature set.
func NewFeatureSet() *FeatureSet {
	return &FeatureSet{values: make(map[string]float64)}
}

// Set inserts or replaces a feature value. First insertion of a key fixes
// its position in the key order.
func (fs *FeatureSet) Set(key string, value float64) {
	if _, ok := fs.values[key]; !ok {
		fs.keys = append(fs.keys, key)
	}
	fs.values[key] = value
}

// Value returns a feature value and whether it is present.
func (fs *FeatureSet) Value(key string) (float64, bool) {
	v, ok := fs.values[key]
	return v, ok
}

// Keys returns the feature names in insertion order.
func (fs *FeatureSet) Keys() []string {
	keys := make([]string, len(fs.keys))
	copy(keys, fs.keys)
	return keys
}

// Len returns the number of features present.
func (fs *FeatureSet) Len() int {
	return len(fs.keys)
}

// roundTo rounds v to the given number of decimal digits.
func roundTo(v float64, digits int) float64 {
	scale := math.Pow10(digits)
	return math.Round(v*scale) / scale
}
