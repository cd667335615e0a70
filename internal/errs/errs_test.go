package errs

import (
	"io"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		kind   string
	}{
		{"decode", Decode(io.ErrUnexpectedEOF, "tile %d", 3), ErrDecode, "decode"},
		{"decode nil cause", Decode(nil, "tile"), ErrDecode, "decode"},
		{"configuration", Configurationf("level %d out of range", 30), ErrConfiguration, "configuration"},
		{"io", IO(io.EOF, "fetch"), ErrIO, "io"},
		{"io status", IOf("status %d", 404), ErrIO, "io"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.target))
			assert.Equal(t, tt.kind, Kind(tt.err))
		})
	}
}

func TestWrappedKeepsCause(t *testing.T) {
	err := IO(io.ErrUnexpectedEOF, "fetch %s", "x")
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.False(t, errors.Is(err, ErrDecode))
	assert.Contains(t, err.Error(), "fetch x")

	wrapped := errors.Wrap(err, "loader")
	assert.Equal(t, "io", Kind(wrapped))
	assert.Equal(t, "other", Kind(io.EOF))
	assert.Equal(t, "", Kind(nil))
}
