package bytepatch

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisassemble(t *testing.T) {
	// NOP; NOP; JMP rel32
	buf := []byte{0x90, 0x90, 0xe9, 0x00, 0x00, 0x00, 0x00}

	text, err := Disassemble(buf, 0, len(buf))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "0x00000000")
	assert.Contains(t, lines[0], "NOP")
	assert.Contains(t, lines[2], "0x00000002")
	assert.Contains(t, lines[2], "e900000000")
	assert.Contains(t, lines[2], "JMP")
}

func TestDisassemble_Truncated(t *testing.T) {
	// A JMP with its operand cut off decodes as two bad bytes.
	text, err := Disassemble([]byte{0xe9, 0x00}, 0, 2)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, "(bad)")
	}
}

func TestDisassemble_BadRange(t *testing.T) {
	buf := make([]byte, 4)

	for _, r := range [][2]int{{-1, 2}, {0, 5}, {3, 2}} {
		_, err := Disassemble(buf, r[0], r[1])
		assert.Error(t, err, "range %v", r)
	}
}

func TestPatchWindow(t *testing.T) {
	start, end := PatchWindow(Result{MatchOffset: 4, PatchOffset: 6}, 4, 100)
	assert.Equal(t, 4, start)
	assert.Equal(t, 16, end)

	// Patch site past the end of the match.
	start, end = PatchWindow(Result{MatchOffset: 4, PatchOffset: 20}, 4, 100)
	assert.Equal(t, 4, start)
	assert.Equal(t, 29, end)

	// Clamped to the buffer.
	_, end = PatchWindow(Result{MatchOffset: 4, PatchOffset: 6}, 4, 10)
	assert.Equal(t, 10, end)
}
