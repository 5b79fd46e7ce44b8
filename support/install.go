package support

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/satishbabariya/mika-go/internal/debug"
	"github.com/satishbabariya/mika-go/internal/failure"
)

// Install writes the embedded mika_std.h and mika_std.c into dir and
// returns the written paths. Existing files are overwritten.
func Install(fs afero.Fs, dir string) ([]string, error) {
	if dir == "" {
		dir = DefaultDir
	}

	header, err := WriteHeader(fs, dir)
	if err != nil {
		return nil, err
	}

	source := filepath.Join(dir, SourceName)
	if err := afero.WriteFile(fs, source, sourceTemplate, 0o644); err != nil {
		return nil, failure.IO("write", source, err)
	}

	debug.Info("Installed runtime", "dir", dir)
	return []string{header, source}, nil
}

// WriteHeader writes only mika_std.h into dir. Translated programs that
// include <System> need it even when the build falls back to the embedded
// source.
func WriteHeader(fs afero.Fs, dir string) (string, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", failure.IO("create directory", dir, err)
	}

	header := filepath.Join(dir, HeaderName)
	if err := afero.WriteFile(fs, header, headerTemplate, 0o644); err != nil {
		return "", failure.IO("write", header, err)
	}
	return header, nil
}
