package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/pboyd/bytepatch"
	"github.com/pboyd/bytepatch/config"
	"github.com/spf13/pflag"
	"github.com/xyproto/env/v2"
)

const (
	exitOK = iota
	exitUsage
	exitFileNotFound
	exitReadFailed
	exitBadSignature
	exitPatternNotFound
	exitAmbiguousMatch
	exitOutOfBounds
	exitWritePermission
	exitWriteFailed
	exitLocked
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	infoLog := log.New(stdout, "[INFO] ", 0)
	errLog := log.New(stderr, "[ERROR] ", 0)

	flags := pflag.NewFlagSet("bytepatch", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bytepatch [flags] [target]\n\n")
		flags.PrintDefaults()
	}

	configPath := flags.StringP("config", "c", env.Str("BYTEPATCH_CONFIG"), "TOML file describing the patch")
	target := flags.StringP("target", "t", "", "file to patch")
	signature := flags.StringP("signature", "s", "", `signature to search for, e.g. '\xe9....\x85\xf6'`)
	offset := flags.UintP("offset", "o", 0, "patch the byte this many bytes past the start of the match")
	patchByte := flags.Uint8P("byte", "b", 0, "replacement byte")
	first := flags.Bool("first", false, "patch the first match even if the signature matches more than once")
	engine := flags.String("engine", "", "search engine: naive or regexp")
	dryRun := flags.BoolP("dry-run", "n", env.Bool("BYTEPATCH_DRY_RUN"), "find the patch site but don't write anything")
	noBackup := flags.Bool("no-backup", false, "don't save a copy of the unpatched file")
	inPlace := flags.Bool("in-place", false, "rewrite the file in place instead of replacing it")
	noLock := flags.Bool("no-lock", false, "don't lock the file while patching")
	disasm := flags.Bool("disasm", false, "print x86-64 disassembly around the patch site")
	writeConfig := flags.String("write-config", "", "write the effective config to this path and exit")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if flags.NArg() > 1 {
		flags.Usage()
		return exitUsage
	}

	conf, err := loadConfig(*configPath)
	if err != nil {
		errLog.Printf("failed to load config: %s", err)
		return exitUsage
	}

	if t := env.Str("BYTEPATCH_TARGET"); t != "" {
		conf.Target = t
	}
	if flags.Changed("target") {
		conf.Target = *target
	}
	if flags.NArg() == 1 {
		conf.Target = flags.Arg(0)
	}
	if flags.Changed("signature") {
		conf.Patch.Signature = *signature
	}
	if flags.Changed("offset") {
		conf.Patch.Offset = *offset
	}
	if flags.Changed("byte") {
		conf.Patch.Byte = *patchByte
	}
	if *first {
		conf.Options.Mode = config.Mode(bytepatch.MatchFirst)
	}
	if flags.Changed("engine") {
		if err := conf.Options.Engine.UnmarshalText([]byte(*engine)); err != nil {
			errLog.Print(err)
			return exitUsage
		}
	}
	if flags.Changed("dry-run") || *dryRun {
		conf.Options.DryRun = *dryRun
	}
	if *noBackup {
		conf.Options.Backup = false
	}
	if *inPlace {
		conf.Options.Atomic = false
	}
	if *noLock {
		conf.Options.Lock = false
	}

	if *writeConfig != "" {
		if err := saveConfig(conf, *writeConfig); err != nil {
			errLog.Printf("failed to save config: %s", err)
			return exitUsage
		}
		infoLog.Printf("config written to %s", *writeConfig)
		return exitOK
	}

	infoLog.Printf("patching %s", conf.Target)

	if *disasm {
		showDisassembly(infoLog, conf)
	}

	res, err := bytepatch.PatchFile(conf.Target, conf.BytePatch(), conf.PatchOptions()...)
	if err != nil {
		errLog.Print(describe(err, conf))
		return exitCode(err)
	}

	infoLog.Printf("found pattern at offset: 0x%X", res.MatchOffset)
	if conf.Options.DryRun {
		infoLog.Printf("dry run: would change 0x%02X to 0x%02X at offset: 0x%X", res.Old, res.New, res.PatchOffset)
		return exitOK
	}
	if conf.Options.Backup {
		infoLog.Printf("original saved to %s", conf.Target+conf.Options.BackupSuffix)
	}
	infoLog.Printf("successfully patched the file at offset: 0x%X", res.PatchOffset)

	return exitOK
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return config.Config{}, err
	}
	defer f.Close()

	return config.Load(f)
}

func saveConfig(conf config.Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := config.Save(conf, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// showDisassembly prints the patch site before and after patching. It works
// on a private copy of the file, so any error is left for PatchFile to
// report.
func showDisassembly(infoLog *log.Logger, conf config.Config) {
	before, err := os.ReadFile(conf.Target)
	if err != nil {
		return
	}
	pattern, err := bytepatch.Compile(conf.Patch.Signature)
	if err != nil {
		return
	}

	after := make([]byte, len(before))
	copy(after, before)
	res, err := bytepatch.Apply(after, conf.BytePatch(), conf.PatchOptions()...)
	if err != nil {
		return
	}

	start, end := bytepatch.PatchWindow(res, pattern.Len(), len(before))
	for _, listing := range []struct {
		name string
		buf  []byte
	}{
		{"before", before},
		{"after", after},
	} {
		text, err := bytepatch.Disassemble(listing.buf, start, end)
		if err != nil {
			return
		}
		infoLog.Printf("%s:\n%s", listing.name, text)
	}
}

func describe(err error, conf config.Config) string {
	switch {
	case errors.Is(err, bytepatch.ErrFileNotFound):
		return fmt.Sprintf("target not found: %s", conf.Target)
	case errors.Is(err, bytepatch.ErrLocked):
		return fmt.Sprintf("another patcher is working on this file: %s", err)
	case errors.Is(err, bytepatch.ErrReadFailed):
		return fmt.Sprintf("cannot read target: %s", err)
	case errors.Is(err, bytepatch.ErrMalformedSignature), errors.Is(err, bytepatch.ErrEmptyPattern):
		return fmt.Sprintf("bad signature %q: %s", conf.Patch.Signature, err)
	case errors.Is(err, bytepatch.ErrPatternNotFound):
		return fmt.Sprintf("patch pattern not found in %s", conf.Target)
	case errors.Is(err, bytepatch.ErrAmbiguousMatch):
		return fmt.Sprintf("%s; use --first to patch the first match anyway", err)
	case errors.Is(err, bytepatch.ErrOffsetOutOfBounds):
		return fmt.Sprintf("cannot patch: %s", err)
	case errors.Is(err, bytepatch.ErrWritePermissionDenied):
		return fmt.Sprintf("cannot open file for writing, are you running as administrator? (%s)", err)
	case errors.Is(err, bytepatch.ErrWriteFailed):
		return fmt.Sprintf("failed to write patch: %s", err)
	default:
		return err.Error()
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, bytepatch.ErrFileNotFound):
		return exitFileNotFound
	case errors.Is(err, bytepatch.ErrLocked):
		return exitLocked
	case errors.Is(err, bytepatch.ErrReadFailed):
		return exitReadFailed
	case errors.Is(err, bytepatch.ErrMalformedSignature), errors.Is(err, bytepatch.ErrEmptyPattern):
		return exitBadSignature
	case errors.Is(err, bytepatch.ErrPatternNotFound):
		return exitPatternNotFound
	case errors.Is(err, bytepatch.ErrAmbiguousMatch):
		return exitAmbiguousMatch
	case errors.Is(err, bytepatch.ErrOffsetOutOfBounds):
		return exitOutOfBounds
	case errors.Is(err, bytepatch.ErrWritePermissionDenied):
		return exitWritePermission
	case errors.Is(err, bytepatch.ErrWriteFailed):
		return exitWriteFailed
	default:
		return exitUsage
	}
}
