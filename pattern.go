package bytepatch

import (
	"fmt"
	"strconv"
	"strings"

	"rsc.io/binaryregexp"
)

const wildcard = '.'

type element struct {
	value byte
	any   bool
}

// Pattern is a compiled signature. It's safe to share between goroutines
// since nothing modifies it after Compile.
type Pattern struct {
	elems []element
}

// Compile parses a signature into a Pattern.
//
// A signature is made of \xHH escapes, which match the byte HH exactly, and
// '.' wildcards, which match any byte. Every other character is ignored, so
// spaces or other separators can be used to make a signature readable:
//
//	\xe9 .... \x85\xf6 \x0f\x84 ....
//
// An escape without two hex digits returns a *MalformedSignatureError. A
// signature with no escapes or wildcards returns ErrEmptyPattern, since an
// empty pattern would match at every offset.
func Compile(signature string) (*Pattern, error) {
	p := &Pattern{}

	for i := 0; i < len(signature); i++ {
		switch c := signature[i]; {
		case c == '\\' && i+1 < len(signature) && signature[i+1] == 'x':
			if i+4 > len(signature) {
				return nil, &MalformedSignatureError{Pos: i, Reason: "escape needs two hex digits"}
			}
			digits := signature[i+2 : i+4]
			v, err := strconv.ParseUint(digits, 16, 8)
			if err != nil {
				return nil, &MalformedSignatureError{Pos: i, Reason: fmt.Sprintf("%q is not a hex byte", digits)}
			}
			p.elems = append(p.elems, element{value: byte(v)})
			i += 3
		case c == wildcard:
			p.elems = append(p.elems, element{any: true})
		}
	}

	if len(p.elems) == 0 {
		return nil, ErrEmptyPattern
	}

	return p, nil
}

// MustCompile is like Compile but panics if the signature can't be compiled.
func MustCompile(signature string) *Pattern {
	p, err := Compile(signature)
	if err != nil {
		panic(fmt.Sprintf("bytepatch: Compile(%q): %v", signature, err))
	}
	return p
}

// Len returns the number of bytes the pattern spans.
func (p *Pattern) Len() int {
	return len(p.elems)
}

// Match reports whether the pattern matches buf starting at off.
func (p *Pattern) Match(buf []byte, off int) bool {
	if off < 0 || off+len(p.elems) > len(buf) {
		return false
	}

	for i, e := range p.elems {
		if !e.any && buf[off+i] != e.value {
			return false
		}
	}
	return true
}

// String returns the signature in canonical form: lower case escapes and
// wildcards with no separators.
func (p *Pattern) String() string {
	var sb strings.Builder
	for _, e := range p.elems {
		if e.any {
			sb.WriteByte(wildcard)
			continue
		}
		fmt.Fprintf(&sb, `\x%02x`, e.value)
	}
	return sb.String()
}

// Regexp returns a byte regular expression equivalent to the pattern.
func (p *Pattern) Regexp() *binaryregexp.Regexp {
	// The canonical signature is already valid regexp syntax. (?s) lets
	// wildcards match '\n' too.
	return binaryregexp.MustCompile(`(?s)` + p.String())
}
