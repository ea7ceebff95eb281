package bytepatch

import "fmt"

// Index returns the lowest offset in buf where p matches, or -1 if it doesn't
// match anywhere.
//
// This is a plain sliding window. Signatures are short and executables are
// tens of megabytes at most, so nothing smarter is needed.
func Index(buf []byte, p *Pattern) int {
	for off := 0; off+p.Len() <= len(buf); off++ {
		if p.Match(buf, off) {
			return off
		}
	}
	return -1
}

// IndexAll returns every offset where p matches, in increasing order.
// Overlapping matches are included.
func IndexAll(buf []byte, p *Pattern) []int {
	var offsets []int
	for off := 0; off+p.Len() <= len(buf); off++ {
		if p.Match(buf, off) {
			offsets = append(offsets, off)
		}
	}
	return offsets
}

// Engine selects how a pattern is searched for.
type Engine int

const (
	// EngineNaive compares the pattern at every offset.
	EngineNaive Engine = iota

	// EngineRegexp converts the pattern to a byte regular expression.
	EngineRegexp
)

func (e Engine) String() string {
	switch e {
	case EngineNaive:
		return "naive"
	case EngineRegexp:
		return "regexp"
	default:
		return fmt.Sprintf("Engine(%d)", int(e))
	}
}

type scanner interface {
	index(buf []byte) int
	indexAll(buf []byte) []int
}

func (e Engine) scanner(p *Pattern) (scanner, error) {
	switch e {
	case EngineNaive:
		return naiveScanner{p}, nil
	case EngineRegexp:
		return regexpScanner{p}, nil
	default:
		return nil, fmt.Errorf("unknown engine: %v", e)
	}
}

type naiveScanner struct {
	p *Pattern
}

func (s naiveScanner) index(buf []byte) int {
	return Index(buf, s.p)
}

func (s naiveScanner) indexAll(buf []byte) []int {
	return IndexAll(buf, s.p)
}

type regexpScanner struct {
	p *Pattern
}

func (s regexpScanner) index(buf []byte) int {
	loc := s.p.Regexp().FindIndex(buf)
	if loc == nil {
		return -1
	}
	return loc[0]
}

func (s regexpScanner) indexAll(buf []byte) []int {
	re := s.p.Regexp()

	// FindAllIndex skips overlapping matches, so restart one byte past
	// each match instead.
	var offsets []int
	for start := 0; start+s.p.Len() <= len(buf); {
		loc := re.FindIndex(buf[start:])
		if loc == nil {
			break
		}
		offsets = append(offsets, start+loc[0])
		start += loc[0] + 1
	}
	return offsets
}
