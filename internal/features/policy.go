package features

import (
	apperrors "camcli/internal/errors"
	"camcli/pkg/contracts/domain"
)

// Extraction policies. Which features a sample gets depends on its
// protocol; the dispatch lives here so callers never branch on protocol
// strings themselves.

// FormationFeatures extracts the feature set for formation and formation +
// capacity check experiments: open circuit potential, both initial
// capacities, and the initial coulombic efficiency.
func FormationFeatures(rec *domain.CyclingRecord, mass float64) (*FeatureSet, error) {
	fs := NewFeatureSet()
	if err := ExtractOCV(rec, fs); err != nil {
		return nil, err
	}
	if err := ExtractInitialChargeCapacity(rec, fs, mass); err != nil {
		return nil, err
	}
	if err := ExtractInitialDischargeCapacity(rec, fs, mass); err != nil {
		return nil, err
	}
	if err := ExtractCoulombicEfficiency(fs); err != nil {
		return nil, err
	}
	return fs, nil
}

// CycleLifeSummaryFeatures extracts the compact feature set reported for
// cycle-life experiments in the cross-protocol summary: both initial
// capacities and retention at a single checkpoint cycle.
func CycleLifeSummaryFeatures(rec *domain.CyclingRecord, mass float64, checkpointCycle int) (*FeatureSet, error) {
	fs := NewFeatureSet()
	if err := ExtractInitialChargeCapacity(rec, fs, mass); err != nil {
		return nil, err
	}
	if err := ExtractInitialDischargeCapacity(rec, fs, mass); err != nil {
		return nil, err
	}
	if err := ExtractRetention(rec, fs, []int{checkpointCycle}); err != nil {
		return nil, err
	}
	return fs, nil
}

// CycleLifeDetailFeatures extracts the full per-cycle feature set for
// cycle-life experiments: both initial capacities plus retention and drift
// for every cycle from 2 through maxCycle inclusive.
func CycleLifeDetailFeatures(rec *domain.CyclingRecord, mass float64, maxCycle int) (*FeatureSet, error) {
	fs := NewFeatureSet()
	if err := ExtractInitialChargeCapacity(rec, fs, mass); err != nil {
		return nil, err
	}
	if err := ExtractInitialDischargeCapacity(rec, fs, mass); err != nil {
		return nil, err
	}
	cycles := CycleRange(2, maxCycle)
	if err := ExtractRetention(rec, fs, cycles); err != nil {
		return nil, err
	}
	if err := ExtractDrift(rec, fs, cycles); err != nil {
		return nil, err
	}
	return fs, nil
}

// ForProtocol extracts the summary feature set for the given protocol.
func ForProtocol(proto domain.Protocol, rec *domain.CyclingRecord, mass float64, checkpointCycle int) (*FeatureSet, error) {
	switch proto {
	case domain.ProtocolFormation, domain.ProtocolFormationCapacityCheck:
		return FormationFeatures(rec, mass)
	case domain.ProtocolCycleLife:
		return CycleLifeSummaryFeatures(rec, mass, checkpointCycle)
	}
	return nil, apperrors.NewValidationError("unknown protocol").WithContext("protocol", string(proto))
}

// CycleRange returns the cycle numbers from first through last inclusive.
func CycleRange(first, last int) []int {
	if last < first {
		return nil
	}
	cycles := make([]int, 0, last-first+1)
	for c := first; c <= last; c++ {
		cycles = append(cycles, c)
	}
	return cycles
}
