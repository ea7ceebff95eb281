package bytepatch

import "fmt"

// Patch describes a one byte change: find Signature, then replace the byte
// Delta bytes past the start of the match with Byte.
type Patch struct {
	Signature string
	Delta     uint
	Byte      byte
}

// Result describes a patch that was (or in a dry run, would have been)
// applied.
type Result struct {
	MatchOffset int
	PatchOffset int

	// Old is the byte that was replaced and New is what replaced it.
	Old, New byte

	// Matches is the number of matches seen. In MatchFirst mode the scan
	// stops at the first match so this is always 1.
	Matches int
}

// Mode controls what happens when a signature matches more than once.
type Mode int

const (
	// MatchUnique requires exactly one match.
	MatchUnique Mode = iota

	// MatchFirst patches the first match and ignores the rest.
	MatchFirst
)

func (m Mode) String() string {
	switch m {
	case MatchUnique:
		return "unique"
	case MatchFirst:
		return "first"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

type options struct {
	mode         Mode
	engine       Engine
	dryRun       bool
	backupSuffix string
	atomic       bool
	lock         bool
}

func defaultOptions() options {
	return options{
		mode:   MatchUnique,
		engine: EngineNaive,
		atomic: true,
	}
}

// Option configures Apply and PatchFile.
type Option func(*options)

// WithMode sets the match mode. The default is MatchUnique.
func WithMode(m Mode) Option {
	return func(o *options) { o.mode = m }
}

// WithEngine sets the search engine. The default is EngineNaive.
func WithEngine(e Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithDryRun makes PatchFile stop before anything is written. Apply ignores
// it.
func WithDryRun(dryRun bool) Option {
	return func(o *options) { o.dryRun = dryRun }
}

// WithBackup makes PatchFile save the unpatched file to path+suffix before
// writing. An empty suffix disables the backup.
func WithBackup(suffix string) Option {
	return func(o *options) { o.backupSuffix = suffix }
}

// WithAtomicWrite chooses between writing a temporary file and renaming it
// over the target (the default), or truncating and rewriting the target in
// place. An in-place write that fails partway leaves the file corrupt.
func WithAtomicWrite(atomic bool) Option {
	return func(o *options) { o.atomic = atomic }
}

// WithLock makes PatchFile hold an exclusive lock on path+".lock" from the
// read until the write completes.
func WithLock(lock bool) Option {
	return func(o *options) { o.lock = lock }
}

// Apply patches buf in memory. On error buf is not modified.
func Apply(buf []byte, patch Patch, opts ...Option) (Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return apply(buf, patch, o)
}

func apply(buf []byte, patch Patch, o options) (Result, error) {
	p, err := Compile(patch.Signature)
	if err != nil {
		return Result{}, err
	}

	s, err := o.engine.scanner(p)
	if err != nil {
		return Result{}, err
	}

	res := Result{New: patch.Byte}

	switch o.mode {
	case MatchFirst:
		res.MatchOffset = s.index(buf)
		if res.MatchOffset < 0 {
			return Result{}, ErrPatternNotFound
		}
		res.Matches = 1
	case MatchUnique:
		offsets := s.indexAll(buf)
		switch len(offsets) {
		case 0:
			return Result{}, ErrPatternNotFound
		case 1:
		default:
			return Result{}, &AmbiguousMatchError{Offsets: offsets}
		}
		res.MatchOffset = offsets[0]
		res.Matches = 1
	default:
		return Result{}, fmt.Errorf("unknown mode: %v", o.mode)
	}

	// Written as a subtraction so a huge delta can't wrap around.
	if uint64(patch.Delta) >= uint64(len(buf)-res.MatchOffset) {
		return Result{}, fmt.Errorf("%w: match at 0x%X + %d is past the end of %d bytes",
			ErrOffsetOutOfBounds, res.MatchOffset, patch.Delta, len(buf))
	}
	res.PatchOffset = res.MatchOffset + int(patch.Delta)

	res.Old = buf[res.PatchOffset]
	buf[res.PatchOffset] = patch.Byte

	return res, nil
}
