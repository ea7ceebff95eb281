package bytepatch

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

// Disassemble decodes buf[start:end] as 64-bit x86 and returns one line per
// instruction. Addresses are printed as offsets into buf.
//
// Bytes that don't decode are printed as "(bad)" and skipped one at a time,
// so the listing can start in the middle of an instruction and recover.
// x86asm reports some truncated input as a bare prefix with no opcode
// rather than an error; those are bad too.
func Disassemble(buf []byte, start, end int) (string, error) {
	if start < 0 || end > len(buf) || start > end {
		return "", fmt.Errorf("invalid range [0x%X, 0x%X) for %d bytes", start, end, len(buf))
	}

	var out bytes.Buffer
	for i := start; i < end; {
		instruction, err := x86asm.Decode(buf[i:end], 64)
		if err != nil || instruction.Op == 0 {
			fmt.Fprintf(&out, "0x%08x\t%-20s\t(bad)\n", i, hex.EncodeToString(buf[i:i+1]))
			i++
			continue
		}
		fmt.Fprintf(&out, "0x%08x\t%-20s\t%s\n", i, hex.EncodeToString(buf[i:i+instruction.Len]), instruction.String())

		i += instruction.Len
	}

	return out.String(), nil
}

// PatchWindow returns the range Disassemble should cover to show the match
// and the patched byte, clamped to a buffer of n bytes.
func PatchWindow(res Result, patternLen, n int) (start, end int) {
	start = res.MatchOffset
	end = res.MatchOffset + patternLen
	if res.PatchOffset >= end {
		end = res.PatchOffset + 1
	}
	// A few extra bytes so an instruction cut off by the end of the
	// match still decodes.
	end += 8
	if end > n {
		end = n
	}
	return start, end
}
