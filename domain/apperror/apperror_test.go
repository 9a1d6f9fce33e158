package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := NotFound(MsgTaskNotFound)

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrStorage))

	wrapped := fmt.Errorf("get task: %w", err)
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

func TestError_UnwrapKeepsCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := Storage(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, MsgStorage, err.Message)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad", nil), KindValidation},
		{"unauthorized", Unauthorized(MsgInvalidCredentials), KindUnauthorized},
		{"wrapped storage", fmt.Errorf("list: %w", Storage(errors.New("x"))), KindStorage},
		{"plain error", errors.New("boom"), KindUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	nf := NotFound(MsgTaskNotFound)
	assert.Same(t, nf, From(fmt.Errorf("wrap: %w", nf)))

	got := From(errors.New("boom"))
	assert.Equal(t, KindUnexpected, got.Kind)
	assert.Equal(t, MsgUnexpected, got.Message)
}

func TestError_JSONDropsCause(t *testing.T) {
	err := Storage(errors.New("connection refused"))

	data, mErr := json.Marshal(err)
	require.NoError(t, mErr)
	assert.JSONEq(t, `{"kind":"storage_error","message":"`+MsgStorage+`"}`, string(data))

	var decoded Error
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, errors.Is(&decoded, ErrStorage))
}
