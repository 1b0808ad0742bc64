package features

import (
	apperrors "camcli/internal/errors"
	"camcli/pkg/contracts/domain"
)

// ExtractOCV records the open circuit potential: the voltage of the last
// REST row at step 0 of cycle 1, the most recent rest-step sample before
// cycling begins. A record without such a row fails hard rather than
// producing a sentinel.
func ExtractOCV(rec *domain.CyclingRecord, fs *FeatureSet) error {
	found := false
	var voltage float64
	for _, row := range rec.Rows {
		if row.StepType == domain.StepRest && row.StepNumber == 0 && row.Cycle == 1 {
			voltage = row.Voltage
			found = true
		}
	}
	if !found {
		return apperrors.NewMissingDataError("no rest rows at step 0 of cycle 1 for open circuit potential")
	}
	fs.Set(KeyOpenCircuitPotential, roundTo(voltage, 3))
	return nil
}

// ExtractInitialChargeCapacity records the first cycle's charge capacity in
// mAh and, normalized by the active-material mass, as specific capacity in
// mAh/g.
func ExtractInitialChargeCapacity(rec *domain.CyclingRecord, fs *FeatureSet, mass float64) error {
	capacityAh, ok := maxStepAmpHours(rec, domain.StepCharge, 1)
	if !ok {
		return apperrors.NewMissingDataError("no charge rows in cycle 1 for initial charge capacity")
	}
	fs.Set(KeyInitialChargeCapacity, roundTo(capacityAh*1000, 3))
	fs.Set(KeyInitialSpecificChargeCapacity, roundTo(capacityAh*1000/mass, 1))
	return nil
}

// ExtractInitialDischargeCapacity records the first cycle's discharge
// capacity in mAh and as specific capacity in mAh/g.
func ExtractInitialDischargeCapacity(rec *domain.CyclingRecord, fs *FeatureSet, mass float64) error {
	capacityAh, ok := maxStepAmpHours(rec, domain.StepDischarge, 1)
	if !ok {
		return apperrors.NewMissingDataError("no discharge rows in cycle 1 for initial discharge capacity")
	}
	fs.Set(KeyInitialDischargeCapacity, roundTo(capacityAh*1000, 3))
	fs.Set(KeyInitialSpecificDischargeCapacity, roundTo(capacityAh*1000/mass, 1))
	return nil
}

// ExtractCoulombicEfficiency records the initial coulombic efficiency,
// 100 * discharge / charge. Both initial capacities must already be in the
// feature set; the ordering dependency is a hard precondition, not a
// silent zero.
func ExtractCoulombicEfficiency(fs *FeatureSet) error {
	discharge, ok := fs.Value(KeyInitialDischargeCapacity)
	if !ok {
		return apperrors.NewMissingDataError("initial discharge capacity must be extracted before coulombic efficiency")
	}
	charge, ok := fs.Value(KeyInitialChargeCapacity)
	if !ok {
		return apperrors.NewMissingDataError("initial charge capacity must be extracted before coulombic efficiency")
	}
	fs.Set(KeyInitialCoulombicEfficiency, roundTo(discharge/charge*100, 1))
	return nil
}

// ExtractRetention records the capacity retention of each requested cycle:
// the cycle's discharge capacity as a percentage of the initial discharge
// capacity. Cycles without discharge rows produce no key at all, never a
// numeric sentinel. The initial discharge capacity must already be in the
// feature set.
func ExtractRetention(rec *domain.CyclingRecord, fs *FeatureSet, cycles []int) error {
	initialMAh, ok := fs.Value(KeyInitialDischargeCapacity)
	if !ok {
		return apperrors.NewMissingDataError("initial discharge capacity must be extracted before retention")
	}

	caps := rec.DischargeCapacityByCycle()
	for _, cycle := range cycles {
		capacityAh, ok := caps[cycle]
		if !ok {
			continue
		}
		fs.Set(RetentionKey(cycle), roundTo(capacityAh*100/(initialMAh/1000), 1))
	}
	return nil
}

// ExtractDrift records the cycle-to-cycle discharge capacity drift for the
// requested cycles, in the order given. The baseline starts at cycle 2 and
// advances to the most recently processed cycle that had a capacity, so
// each value is a percentage change relative to the previous processed
// cycle, not a fixed cycle 2 reference. Cycles without discharge rows
// produce no key and leave the baseline unchanged.
func ExtractDrift(rec *domain.CyclingRecord, fs *FeatureSet, cycles []int) error {
	caps := rec.DischargeCapacityByCycle()

	prev, havePrev := caps[2]
	for _, cycle := range cycles {
		capacityAh, ok := caps[cycle]
		if !ok {
			continue
		}
		if !havePrev {
			prev, havePrev = capacityAh, true
			continue
		}
		fs.Set(DriftKey(cycle), roundTo((capacityAh-prev)/(prev/100), 3))
		prev = capacityAh
	}
	return nil
}

// maxStepAmpHours returns the maximum step_amp_hours over rows of the given
// step type and cycle. Capacity accrues monotonically within a step, so the
// maximum is the step's total capacity regardless of row order.
func maxStepAmpHours(rec *domain.CyclingRecord, step domain.StepType, cycle int) (float64, bool) {
	var max float64
	found := false
	for _, row := range rec.Rows {
		if row.StepType != step || row.Cycle != cycle {
			continue
		}
		if !found || row.StepAmpHours > max {
			max = row.StepAmpHours
			found = true
		}
	}
	return max, found
}
