package terminal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResetTo(t *testing.T) {
	var buf bytes.Buffer
	ResetTo(&buf)

	out := buf.String()
	assert.Contains(t, out, "\033[?25h")
	assert.Contains(t, out, "\033[?1049l")
	assert.Contains(t, out, "\033[?1006l")
}
