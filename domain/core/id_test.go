package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestIDIsEmpty tests ID emptiness check
func TestIDIsEmpty(t *testing.T) {
	assert.True(t, ID("").IsEmpty())
	assert.False(t, ID("not-empty").IsEmpty())
}

// TestParseTestID tests test ID parsing
func TestParseTestID(t *testing.T) {
	id, err := ParseTestID("abc-123")
	require.NoError(t, err)
	assert.Equal(t, "abc-123", id.String())

	_, err = ParseTestID("   ")
	assert.Error(t, err)
}

func TestStreamSeed(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, StreamSeed(42, "trial", "7"), StreamSeed(42, "trial", "7"))
	})

	t.Run("labels partition streams", func(t *testing.T) {
		assert.NotEqual(t, StreamSeed(42, "A"), StreamSeed(42, "B"))
		assert.NotEqual(t, StreamSeed(42, "ab", "c"), StreamSeed(42, "a", "bc"))
	})

	t.Run("base seed matters", func(t *testing.T) {
		assert.NotEqual(t, StreamSeed(1, "A"), StreamSeed(2, "A"))
	})
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		validation bool
		structural bool
	}{
		{"prior domain", NewValidationError(ErrInvalidPriorDomain, "alpha", "must be > 0"), true, false},
		{"support", NewSupportError("poisson", 3, -1, "non-negative integers"), true, false},
		{"insufficient", ErrInsufficientData, true, false},
		{"length mismatch", NewStructuralError(ErrDrawLengthMismatch, "10 != 11"), false, true},
		{"missing posterior", ErrMissingPosterior, false, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.validation, IsValidationError(tc.err))
			assert.Equal(t, tc.structural, IsStructuralError(tc.err))
		})
	}
}

func TestSupportErrorMessage(t *testing.T) {
	err := NewSupportError("bernoulli", 2, 0.5, "values in {0,1}")
	assert.ErrorIs(t, err, ErrSampleSupport)
	assert.Contains(t, err.Error(), "sample violates distribution support")
	assert.Contains(t, err.Error(), "sample[2]=0.5")
}
