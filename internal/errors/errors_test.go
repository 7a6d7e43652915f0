package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"vaeval/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrap_KeepsCodeAndChain(t *testing.T) {
	base := ConfigInvalid("N_SPLITS must be positive")
	err := Wrap(base, "failed to load configuration")

	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.Equal(t, "failed to load configuration: N_SPLITS must be positive", err.Error())
	assert.True(t, stderrors.Is(err, base))
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"length mismatch", core.NewLengthMismatchError("labels", 3, 4), CodeInvalidInput},
		{"wrapped csmf sum", fmt.Errorf("split 2: %w", core.NewCSMFSumError(0.9, 1)), CodeInvalidInput},
		{"not found", core.NewNotFoundError("run", "abc"), CodeNotFound},
		{"app error", IOError("write failed", stderrors.New("disk full")), CodeIOError},
		{"plain", stderrors.New("boom"), CodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(core.ErrInvalidSplit))
	assert.Equal(t, 2, ExitCode(ConfigInvalid("bad")))
	assert.Equal(t, 1, ExitCode(DatabaseError("insert failed", stderrors.New("conn reset"))))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeIOError, stderrors.New("permission denied"))
	assert.Equal(t, CodeIOError, GetCode(err))
	assert.Equal(t, "permission denied", err.Error())

	wrapped := WithCode(CodeInvalidInput, fmt.Errorf("subset: %w", core.ErrInvalidSubset))
	assert.Equal(t, "subset: invalid split subset", wrapped.Error())
	assert.ErrorIs(t, wrapped, core.ErrInvalidSubset)
	assert.Equal(t, "failed to combine: subset: invalid split subset", Wrap(wrapped, "failed to combine").Error())

	recoded := WithCode(CodeInternalError, InvalidInput("bad"))
	assert.Equal(t, CodeInternalError, GetCode(recoded))
	assert.Nil(t, WithCode(CodeIOError, nil))
}
