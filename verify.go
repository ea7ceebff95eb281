package bytepatch

import (
	"errors"
	"fmt"
)

// maxDifferences caps how many differing bytes Verify reports individually.
const maxDifferences = 8

type byteDifference struct {
	Offset int
	A, B   byte
}

// diffBytes returns every offset where a and b differ, up to their shorter
// length.
func diffBytes(a, b []byte) []byteDifference {
	n := min(len(a), len(b))

	var diffs []byteDifference
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			diffs = append(diffs, byteDifference{Offset: i, A: a[i], B: b[i]})
		}
	}
	return diffs
}

// Verify checks that patched is original with exactly the change described
// by res: same length, res.New at res.PatchOffset and nothing else touched.
func Verify(original, patched []byte, res Result) error {
	errs := []error{}

	if len(original) != len(patched) {
		errs = append(errs, fmt.Errorf("length changed: %d != %d", len(original), len(patched)))
	}

	if res.PatchOffset < 0 || res.PatchOffset >= len(patched) {
		errs = append(errs, fmt.Errorf("patch offset 0x%X is outside %d bytes", res.PatchOffset, len(patched)))
	} else if patched[res.PatchOffset] != res.New {
		errs = append(errs, fmt.Errorf("offset 0x%X: 0x%02X != 0x%02X", res.PatchOffset, patched[res.PatchOffset], res.New))
	}

	unexpected := 0
	for _, d := range diffBytes(original, patched) {
		if d.Offset == res.PatchOffset {
			continue
		}
		unexpected++
		if unexpected <= maxDifferences {
			errs = append(errs, fmt.Errorf("offset 0x%X: 0x%02X != 0x%02X", d.Offset, d.A, d.B))
		}
	}
	if unexpected > maxDifferences {
		errs = append(errs, fmt.Errorf("%d more differences", unexpected-maxDifferences))
	}

	return errors.Join(errs...)
}
