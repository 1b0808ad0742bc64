package domain

// StepType identifies the mode of a cycling step.
type StepType string

const (
	StepCharge    StepType = "CHARGE"
	StepDischarge StepType = "DISCHARGE"
	StepRest      StepType = "REST"
)

// Measurement represents a single acquisition row of a normalized cycling
// time-series ("cloud format"). Rows for a given cycle are contiguous and
// ordered by acquisition time; StepAmpHours is monotonically non-decreasing
// within a step.
type Measurement struct {
	StepType     StepType `json:"step_type" validate:"required"`
	StepNumber   int      `json:"step_number" validate:"min=0"`
	Cycle        int      `json:"cycle" validate:"min=1"`
	Voltage      float64  `json:"voltage"`
	StepAmpHours float64  `json:"step_amp_hours" validate:"min=0"`
}

// CyclingRecord represents the complete normalized time-series produced by
// the instrument reader for one test file.
type CyclingRecord struct {
	Rows []Measurement `json:"rows" validate:"required,dive"`
}

// DischargeCapacityByCycle returns the discharge capacity of each cycle
// after the first, in ampere-hours. A cycle's capacity is the maximum
// StepAmpHours observed in its discharge rows; capacity accrues
// monotonically within a step, so the maximum is the step total. Cycles
// without discharge rows are absent from the map.
func (r *CyclingRecord) DischargeCapacityByCycle() map[int]float64 {
	caps := make(map[int]float64)
	for _, row := range r.Rows {
		if row.StepType != StepDischarge || row.Cycle <= 1 {
			continue
		}
		if cur, ok := caps[row.Cycle]; !ok || row.StepAmpHours > cur {
			caps[row.Cycle] = row.StepAmpHours
		}
	}
	return caps
}
