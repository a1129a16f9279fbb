package autherr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindStrings(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Ok, "Success"},
		{NoSensor, "No sensor found"},
		{InitFailed, "Initialization failed"},
		{SampleFailed, "Sample collection failed"},
		{NoContact, "No finger contact"},
		{InsufficientSample, "Insufficient sample"},
		{Contamination, "Sample contamination"},
		{PoorQuality, "Poor sample quality"},
		{Timeout, "Operation timed out"},
		{CalibrationRequired, "Calibration required"},
		{ProfileMismatch, "Profile mismatch"},
		{Memory, "Memory allocation failed"},
		{Permission, "Permission denied"},
		{Locked, "Account locked"},
		{CryptoFailure, "Cryptographic error"},
		{HealthAlert, "Health anomaly detected"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.kind.String())
		})
	}
}

func TestE_KindAndMessage(t *testing.T) {
	err := E(PoorQuality, "overall 0.42 below threshold")
	require.Error(t, err)
	assert.Equal(t, "Poor sample quality: overall 0.42 below threshold", err.Error())
	assert.True(t, Is(PoorQuality, err))
	assert.False(t, Is(Locked, err))
}

func TestE_WrapsCause(t *testing.T) {
	cause := errors.New("read /dev/plasma0: no such file")
	err := E(NoSensor, cause)
	assert.True(t, Is(NoSensor, err))
	assert.True(t, errors.Is(err, cause))

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, NoSensor, e.Kind)
}

func TestE_InheritsKindFromCause(t *testing.T) {
	inner := E(Locked, "failed attempt limit reached")
	outer := E("authenticate", inner)
	assert.True(t, Is(Locked, outer))
}

func TestE_SurvivesFmtWrapping(t *testing.T) {
	err := fmt.Errorf("engine: %w", E(CryptoFailure, "tag verification failed"))
	assert.True(t, Is(CryptoFailure, err))

	kind, ok := KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, CryptoFailure, kind)
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(nil)
	assert.True(t, ok)
	assert.Equal(t, Ok, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestIs_PlainError(t *testing.T) {
	assert.False(t, Is(Timeout, errors.New("deadline exceeded")))
	assert.False(t, Is(Timeout, nil))
}
