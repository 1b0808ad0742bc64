package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "camcli/internal/errors"
	"camcli/pkg/contracts/domain"
)

// formationRecord covers one full formation cycle with a rest step first.
func formationRecord() *domain.CyclingRecord {
	return record(
		rest(0, 1, 3.312),
		charge(1, 0.005),
		charge(1, 0.010),
		discharge(1, 0.009),
	)
}

// cycleLifeRecord covers cycle 1 plus discharge data for cycles 2 to 4.
func cycleLifeRecord() *domain.CyclingRecord {
	return record(
		charge(1, 0.010),
		discharge(1, 0.010),
		discharge(2, 0.010),
		discharge(3, 0.009),
		discharge(4, 0.0095),
	)
}

func TestFormationFeatures(t *testing.T) {
	fs, err := FormationFeatures(formationRecord(), 2.0)
	require.NoError(t, err)

	assert.Equal(t, []string{
		KeyOpenCircuitPotential,
		KeyInitialChargeCapacity,
		KeyInitialSpecificChargeCapacity,
		KeyInitialDischargeCapacity,
		KeyInitialSpecificDischargeCapacity,
		KeyInitialCoulombicEfficiency,
	}, fs.Keys())

	ocv, _ := fs.Value(KeyOpenCircuitPotential)
	assert.Equal(t, 3.312, ocv)

	eff, _ := fs.Value(KeyInitialCoulombicEfficiency)
	assert.Equal(t, 90.0, eff)
}

func TestFormationFeatures_NoRestStep(t *testing.T) {
	rec := record(charge(1, 0.010), discharge(1, 0.009))

	fs, err := FormationFeatures(rec, 1.0)
	require.Error(t, err)
	assert.Nil(t, fs)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeMissingData))
}

func TestCycleLifeSummaryFeatures(t *testing.T) {
	fs, err := CycleLifeSummaryFeatures(cycleLifeRecord(), 1.0, 3)
	require.NoError(t, err)

	r3, ok := fs.Value(RetentionKey(3))
	require.True(t, ok)
	assert.Equal(t, 90.0, r3)

	// No OCV or efficiency in the cycle-life summary policy.
	_, ok = fs.Value(KeyOpenCircuitPotential)
	assert.False(t, ok)
	_, ok = fs.Value(KeyInitialCoulombicEfficiency)
	assert.False(t, ok)
}

func TestCycleLifeSummaryFeatures_MissingCheckpoint(t *testing.T) {
	fs, err := CycleLifeSummaryFeatures(cycleLifeRecord(), 1.0, 50)
	require.NoError(t, err)

	// Checkpoint cycle was never reached: key absent, row still valid.
	_, ok := fs.Value(RetentionKey(50))
	assert.False(t, ok)
	_, ok = fs.Value(KeyInitialDischargeCapacity)
	assert.True(t, ok)
}

func TestCycleLifeDetailFeatures(t *testing.T) {
	fs, err := CycleLifeDetailFeatures(cycleLifeRecord(), 1.0, 4)
	require.NoError(t, err)

	for _, cycle := range []int{2, 3, 4} {
		_, ok := fs.Value(RetentionKey(cycle))
		assert.True(t, ok, "retention for cycle %d", cycle)
		_, ok = fs.Value(DriftKey(cycle))
		assert.True(t, ok, "drift for cycle %d", cycle)
	}

	// Retention columns come before drift columns.
	keys := fs.Keys()
	assert.Equal(t, KeyInitialChargeCapacity, keys[0])
	assert.Equal(t, RetentionKey(2), keys[4])
	assert.Equal(t, DriftKey(2), keys[7])
}

func TestForProtocol(t *testing.T) {
	tests := []struct {
		name     string
		protocol domain.Protocol
		wantKey  string
		wantErr  bool
	}{
		{name: "formation", protocol: domain.ProtocolFormation, wantKey: KeyInitialCoulombicEfficiency},
		{name: "formation capacity check", protocol: domain.ProtocolFormationCapacityCheck, wantKey: KeyInitialCoulombicEfficiency},
		{name: "cycle life", protocol: domain.ProtocolCycleLife, wantKey: RetentionKey(3)},
		{name: "unknown", protocol: domain.Protocol("BOGUS"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := record(
				rest(0, 1, 3.3),
				charge(1, 0.010),
				discharge(1, 0.009),
				discharge(2, 0.009),
				discharge(3, 0.008),
			)
			fs, err := ForProtocol(tt.protocol, rec, 1.0, 3)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			_, ok := fs.Value(tt.wantKey)
			assert.True(t, ok)
		})
	}
}

func TestCycleRange(t *testing.T) {
	assert.Equal(t, []int{2, 3, 4, 5}, CycleRange(2, 5))
	assert.Equal(t, []int{2}, CycleRange(2, 2))
	assert.Nil(t, CycleRange(5, 2))
}
