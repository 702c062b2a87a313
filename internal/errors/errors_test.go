package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"bayesab/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrap_ClassifiesDomainErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code string
	}{
		{"validation", core.NewValidationError(core.ErrInvalidPriorDomain, "alpha", "-1"), CodeValidationError},
		{"structural", core.NewStructuralError(core.ErrDrawLengthMismatch, "1 != 2"), CodeStructuralError},
		{"other", fmt.Errorf("disk on fire"), CodeInternalError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := Wrap(tc.err, "running test")
			assert.Equal(t, tc.code, GetCode(wrapped))
			assert.True(t, stderrors.Is(wrapped, tc.err))
			assert.Contains(t, wrapped.Error(), "running test")
		})
	}
}

func TestWrap_KeepsExistingCode(t *testing.T) {
	inner := ConfigInvalid("BAYESAB_WORKERS must be positive")
	outer := Wrapf(inner, "loading %s", "config")

	assert.Equal(t, CodeConfigInvalid, GetCode(outer))
	assert.Equal(t, "loading config: BAYESAB_WORKERS must be positive", outer.Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, Wrapf(nil, "x %d", 1))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}
