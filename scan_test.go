package bytepatch

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndex(t *testing.T) {
	cases := map[string]struct {
		signature string
		buf       []byte
		want      int
	}{
		"match at start": {
			signature: `\xAA\xBB..\xCC`,
			buf:       []byte{0xaa, 0xbb, 0x01, 0x02, 0xcc, 0xdd},
			want:      0,
		},
		"match at end": {
			signature: `\xcc\xdd`,
			buf:       []byte{0xaa, 0xbb, 0x01, 0x02, 0xcc, 0xdd},
			want:      4,
		},
		"first match wins": {
			signature: `\x01.`,
			buf:       []byte{0x00, 0x01, 0x02, 0x01, 0x03},
			want:      1,
		},
		"no match": {
			signature: `\xff`,
			buf:       []byte{0x00, 0x01},
			want:      -1,
		},
		"empty buffer": {
			signature: `\x00`,
			buf:       nil,
			want:      -1,
		},
		"pattern longer than buffer": {
			signature: `...`,
			buf:       []byte{0x00, 0x01},
			want:      -1,
		},
		"partial match at end": {
			signature: `\x01\x02\x03`,
			buf:       []byte{0x00, 0x01, 0x02},
			want:      -1,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			p := MustCompile(tc.signature)
			assert.Equal(t, tc.want, Index(tc.buf, p))
		})
	}
}

func TestIndex_AllWildcards(t *testing.T) {
	for l := 1; l <= 8; l++ {
		p := MustCompile(string(bytes.Repeat([]byte{'.'}, l)))
		for n := l; n <= l+4; n++ {
			assert.Equal(t, 0, Index(make([]byte, n), p), "pattern length %d, buffer length %d", l, n)
		}
	}
}

func TestIndex_ExactIsSubstringSearch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 200; i++ {
		// A small alphabet so there are plenty of hits and near misses.
		buf := make([]byte, rng.Intn(64))
		for j := range buf {
			buf[j] = byte(rng.Intn(3))
		}
		needle := make([]byte, 1+rng.Intn(4))
		for j := range needle {
			needle[j] = byte(rng.Intn(3))
		}

		var sig string
		for _, b := range needle {
			sig += fmt.Sprintf(`\x%02x`, b)
		}

		assert.Equal(t, bytes.Index(buf, needle), Index(buf, MustCompile(sig)), "buf %x needle %x", buf, needle)
	}
}

func TestIndexAll(t *testing.T) {
	p := MustCompile(`\x01.\x01`)
	buf := []byte{0x01, 0x00, 0x01, 0x00, 0x01, 0x01, 0x01}

	// Overlapping matches are all reported.
	assert.Equal(t, []int{0, 2, 4}, IndexAll(buf, p))
	assert.Empty(t, IndexAll(nil, p))
}

func TestEngines_Agree(t *testing.T) {
	rng := rand.New(rand.NewSource(2))

	signatures := []string{
		`\x00`,
		`\x01.\x01`,
		`..`,
		`\x0a.\x0a`,
		`\x00\x01\x02`,
		`.\x02.`,
	}

	for i := 0; i < 100; i++ {
		buf := make([]byte, rng.Intn(48))
		for j := range buf {
			// Include 0x0a so wildcards have to match newlines.
			buf[j] = []byte{0x00, 0x01, 0x02, 0x0a}[rng.Intn(4)]
		}

		for _, sig := range signatures {
			p := MustCompile(sig)
			naive := naiveScanner{p}
			re := regexpScanner{p}

			assert.Equal(t, naive.index(buf), re.index(buf), "index %s in %x", sig, buf)
			assert.Equal(t, naive.indexAll(buf), re.indexAll(buf), "indexAll %s in %x", sig, buf)
		}
	}
}

func TestEngine_Unknown(t *testing.T) {
	_, err := Engine(99).scanner(MustCompile(`.`))
	assert.Error(t, err)
	assert.Equal(t, "Engine(99)", Engine(99).String())
}
