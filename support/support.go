// Package support locates or materializes the Mika runtime support library
// that translated programs are linked against.
package support

import (
	"crypto/rand"
	_ "embed"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/satishbabariya/mika-go/internal/debug"
	"github.com/satishbabariya/mika-go/internal/failure"
)

const (
	// DefaultDir is the well-known installation directory of the runtime.
	DefaultDir = "/usr/local/include/mika"

	SourceName = "mika_std.c"
	HeaderName = "mika_std.h"
	ObjectName = "mika_std.o"

	ephemeralPrefix = "mika_std_"
	ephemeralTries  = 3
)

var (
	//go:embed templates/mika_std.h
	headerTemplate []byte

	//go:embed templates/mika_std.c
	sourceTemplate []byte

	//go:embed templates/fallback.c
	fallbackTemplate []byte
)

// Header returns the embedded mika_std.h.
func Header() []byte { return append([]byte(nil), headerTemplate...) }

// InstalledSource returns the embedded mika_std.c that Install writes.
func InstalledSource() []byte { return append([]byte(nil), sourceTemplate...) }

// Fallback returns the self-contained source written when no runtime is
// installed. It does not depend on mika_std.h.
func Fallback() []byte { return append([]byte(nil), fallbackTemplate...) }

// DefaultObjectPath is the fixed location of the compiled support object.
// Concurrent builds on one machine share it.
func DefaultObjectPath(tempDir string) string {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return filepath.Join(tempDir, ObjectName)
}

// Source is a runtime support source file ready to be compiled.
type Source struct {
	Path string
	// Ephemeral sources were generated for this build and must be removed
	// once compiled, whatever the keep-files preference.
	Ephemeral bool
}

// Release removes the source if it is ephemeral. Installed sources are
// never touched.
func (s *Source) Release(fs afero.Fs) error {
	if s == nil || !s.Ephemeral {
		return nil
	}
	debug.Debug("Removing ephemeral runtime source", "path", s.Path)
	if err := fs.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return failure.IO("remove", s.Path, err)
	}
	return nil
}

// Resolver finds the runtime support source for a build.
type Resolver struct {
	Fs afero.Fs
	// Dir is checked for an installed mika_std.c.
	Dir string
	// TempDir receives generated sources.
	TempDir string
	// Random feeds the ephemeral file suffix.
	Random io.Reader
}

// NewResolver creates a resolver. Empty dir and tempDir fall back to
// DefaultDir and os.TempDir().
func NewResolver(fs afero.Fs, dir, tempDir string) *Resolver {
	if dir == "" {
		dir = DefaultDir
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Resolver{
		Fs:      fs,
		Dir:     dir,
		TempDir: tempDir,
		Random:  rand.Reader,
	}
}

// InstalledPath is the runtime source looked up by Resolve.
func (r *Resolver) InstalledPath() string {
	return filepath.Join(r.Dir, SourceName)
}

// Resolve returns the installed runtime source when present. Otherwise it
// writes the embedded fallback to a uniquely named file in TempDir and
// returns it marked ephemeral.
func (r *Resolver) Resolve() (*Source, error) {
	installed := r.InstalledPath()

	ok, err := afero.Exists(r.Fs, installed)
	if err != nil {
		return nil, failure.IO("stat", installed, err)
	}
	if ok {
		debug.Debug("Using installed runtime", "path", installed)
		return &Source{Path: installed}, nil
	}

	debug.Debug("Installed runtime not found, generating fallback", "looked_for", installed)
	path, err := r.writeEphemeral()
	if err != nil {
		return nil, err
	}
	debug.Debug("Generated ephemeral runtime", "path", path)
	return &Source{Path: path, Ephemeral: true}, nil
}

func (r *Resolver) writeEphemeral() (string, error) {
	if err := r.Fs.MkdirAll(r.TempDir, 0o755); err != nil {
		return "", failure.IO("create directory", r.TempDir, err)
	}

	var lastErr error
	for i := 0; i < ephemeralTries; i++ {
		suffix, err := r.suffix()
		if err != nil {
			return "", failure.IO("generate name", r.TempDir, err)
		}
		path := filepath.Join(r.TempDir, ephemeralPrefix+suffix+".c")

		f, err := r.Fs.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			lastErr = err
			continue
		}
		if err != nil {
			return "", failure.IO("create", path, err)
		}

		_, werr := f.Write(fallbackTemplate)
		cerr := f.Close()
		if werr == nil {
			werr = cerr
		}
		if werr != nil {
			_ = r.Fs.Remove(path)
			return "", failure.IO("write", path, werr)
		}
		return path, nil
	}
	return "", failure.IO("create", filepath.Join(r.TempDir, ephemeralPrefix+"*.c"), lastErr)
}

func (r *Resolver) suffix() (string, error) {
	random := r.Random
	if random == nil {
		random = rand.Reader
	}
	buf := make([]byte, 16)
	if _, err := io.ReadFull(random, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
