package core

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateKey(t *testing.T) {
	for _, ok := range []string{"1714557600000-00112233aabbccdd.txt", "abc", "a..b"} {
		assert.NoError(t, ValidateKey(ok), ok)
	}
	for _, bad := range []string{"", "  ", "../etc/passwd", "a/b", `a\b`, ".hidden", "..", "a\x00b"} {
		assert.ErrorIs(t, ValidateKey(bad), ErrInvalidKey, bad)
	}
}

func TestContextReader(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := ContextReader(ctx, strings.NewReader("hello world"))

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	cancel()
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, context.Canceled)

	all, err := io.ReadAll(ContextReader(context.Background(), strings.NewReader("abc")))
	require.NoError(t, err)
	assert.Equal(t, "abc", string(all))
}
