package config

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/pboyd/bytepatch"
)

// Mode is bytepatch.Mode spelled "unique" or "first" in TOML.
type Mode bytepatch.Mode

func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "unique":
		*m = Mode(bytepatch.MatchUnique)
	case "first":
		*m = Mode(bytepatch.MatchFirst)
	default:
		return fmt.Errorf("unknown match mode: %s", string(text))
	}
	return nil
}

func (m Mode) MarshalText() ([]byte, error) {
	switch bytepatch.Mode(m) {
	case bytepatch.MatchUnique, bytepatch.MatchFirst:
		return []byte(bytepatch.Mode(m).String()), nil
	default:
		return nil, fmt.Errorf("unknown match mode: %v", int(m))
	}
}

// Engine is bytepatch.Engine spelled "naive" or "regexp" in TOML.
type Engine bytepatch.Engine

func (e *Engine) UnmarshalText(text []byte) error {
	switch string(text) {
	case "naive":
		*e = Engine(bytepatch.EngineNaive)
	case "regexp":
		*e = Engine(bytepatch.EngineRegexp)
	default:
		return fmt.Errorf("unknown engine: %s", string(text))
	}
	return nil
}

func (e Engine) MarshalText() ([]byte, error) {
	switch bytepatch.Engine(e) {
	case bytepatch.EngineNaive, bytepatch.EngineRegexp:
		return []byte(bytepatch.Engine(e).String()), nil
	default:
		return nil, fmt.Errorf("unknown engine: %v", int(e))
	}
}

// Patch is the [patch] table: what to look for and which byte to change.
type Patch struct {
	Signature string `toml:"signature"`
	Offset    uint   `toml:"offset"`
	Byte      uint8  `toml:"byte"`
}

// Options is the [options] table, mapped onto bytepatch options.
type Options struct {
	Mode         Mode   `toml:"mode"`
	Engine       Engine `toml:"engine"`
	DryRun       bool   `toml:"dry_run"`
	Backup       bool   `toml:"backup"`
	BackupSuffix string `toml:"backup_suffix"`
	Atomic       bool   `toml:"atomic"`
	Lock         bool   `toml:"lock"`
}

// Config describes one patch run.
type Config struct {
	Target  string  `toml:"target"`
	Patch   Patch   `toml:"patch"`
	Options Options `toml:"options"`
}

// Default is the DaVinci Resolve Studio license check patch.
func Default() Config {
	return Config{
		Target: `C:\Program Files\Blackmagic Design\DaVinci Resolve\Resolve.exe`,
		Patch: Patch{
			Signature: `\xe9....\x85\xf6\x0f\x84....\x48\x8b\x59\x10`,
			Offset:    8,
			Byte:      0x85,
		},
		Options: Options{
			Mode:         Mode(bytepatch.MatchUnique),
			Engine:       Engine(bytepatch.EngineNaive),
			Backup:       true,
			BackupSuffix: ".bak",
			Atomic:       true,
			Lock:         true,
		},
	}
}

// BytePatch converts the patch section to the library's type.
func (c Config) BytePatch() bytepatch.Patch {
	return bytepatch.Patch{
		Signature: c.Patch.Signature,
		Delta:     c.Patch.Offset,
		Byte:      c.Patch.Byte,
	}
}

// PatchOptions converts the options section to bytepatch options.
func (c Config) PatchOptions() []bytepatch.Option {
	backup := ""
	if c.Options.Backup {
		backup = c.Options.BackupSuffix
	}
	return []bytepatch.Option{
		bytepatch.WithMode(bytepatch.Mode(c.Options.Mode)),
		bytepatch.WithEngine(bytepatch.Engine(c.Options.Engine)),
		bytepatch.WithDryRun(c.Options.DryRun),
		bytepatch.WithBackup(backup),
		bytepatch.WithAtomicWrite(c.Options.Atomic),
		bytepatch.WithLock(c.Options.Lock),
	}
}

// Save writes config to w as TOML.
func Save(config Config, w io.Writer) error {
	return toml.NewEncoder(w).Encode(config)
}

// Load reads a config. Anything missing from r keeps its default value.
func Load(r io.Reader) (Config, error) {
	c := Default()

	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return c, err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return c, fmt.Errorf("unknown config keys: %v", undecoded)
	}

	return c, nil
}
