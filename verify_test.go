package bytepatch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	original := []byte{0xaa, 0xbb, 0x01, 0x02, 0xcc, 0xdd}
	patched := bytes.Clone(original)

	res, err := Apply(patched, Patch{Signature: `\xAA\xBB..\xCC`, Delta: 1, Byte: 0x00})
	require.NoError(t, err)
	assert.NoError(t, Verify(original, patched, res))

	t.Run("extra change", func(t *testing.T) {
		bad := bytes.Clone(patched)
		bad[4] = 0xff
		err := Verify(original, bad, res)
		assert.ErrorContains(t, err, "offset 0x4: 0xCC != 0xFF")
	})

	t.Run("patch missing", func(t *testing.T) {
		err := Verify(original, original, res)
		assert.ErrorContains(t, err, "offset 0x1: 0xBB != 0x00")
	})

	t.Run("truncated", func(t *testing.T) {
		err := Verify(original, patched[:3], res)
		assert.ErrorContains(t, err, "length changed: 6 != 3")
	})

	t.Run("offset out of range", func(t *testing.T) {
		err := Verify(original, patched, Result{PatchOffset: 6})
		assert.ErrorContains(t, err, "outside")
	})

	t.Run("many differences", func(t *testing.T) {
		err := Verify(make([]byte, 32), bytes.Repeat([]byte{0x01}, 32), Result{PatchOffset: 0, New: 0x01})
		assert.ErrorContains(t, err, "23 more differences")
	})
}
