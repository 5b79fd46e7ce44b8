package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	orig := AppFs
	fs := afero.NewMemMapFs()
	AppFs = fs
	t.Cleanup(func() { AppFs = orig })
	require.NoError(t, fs.MkdirAll("/proj", 0o755))
	return fs
}

func unsetAfter(t *testing.T, keys ...string) {
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	useMemFs(t)

	cfg, err := LoadConfig(Options{Dir: "/proj"})
	require.NoError(t, err)

	assert.Equal(t, "gcc", cfg.Toolchain.CC)
	assert.Equal(t, "4.9", cfg.Toolchain.MinVersion)
	assert.Equal(t, "/usr/local/include/mika", cfg.Runtime.Dir)
	assert.Equal(t, "/usr/local/include", cfg.Runtime.IncludeDir())
	assert.Equal(t, filepath.Join(cfg.Runtime.TempDir, "mika_std.o"), cfg.Runtime.Object)
	assert.Empty(t, cfg.Translator.Command)
	assert.False(t, cfg.History.Enabled)
	assert.Equal(t, "sqlite3", cfg.History.Driver)
	assert.True(t, filepath.IsAbs(cfg.History.DSN), "dsn %q should be expanded", cfg.History.DSN)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.File)
}

func TestLoadConfigFile(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/proj/.mika.yaml", []byte(`
toolchain:
  cc: clang
runtime:
  dir: /opt/mika/include/mika
  temp_dir: /var/tmp
translator:
  command: mika2c
history:
  enabled: true
  driver: postgres
  dsn: postgres://localhost/mika
`), 0o644))

	cfg, err := LoadConfig(Options{Dir: "/proj"})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/proj", ".mika.yaml"), cfg.File)
	assert.Equal(t, "clang", cfg.Toolchain.CC)
	assert.Equal(t, "4.9", cfg.Toolchain.MinVersion)
	assert.Equal(t, "/opt/mika/include", cfg.Runtime.IncludeDir())
	assert.Equal(t, "/var/tmp/mika_std.o", cfg.Runtime.Object)
	assert.Equal(t, "mika2c", cfg.Translator.Command)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "postgres", cfg.History.Driver)
	assert.Equal(t, "postgres://localhost/mika", cfg.History.DSN)
}

func TestLoadConfigExplicitFile(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/etc/mika.yaml", []byte("toolchain:\n  cc: tcc\n"), 0o644))

	cfg, err := LoadConfig(Options{Dir: "/proj", File: "/etc/mika.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "tcc", cfg.Toolchain.CC)

	_, err = LoadConfig(Options{Dir: "/proj", File: "/etc/missing.yaml"})
	assert.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	useMemFs(t)
	t.Setenv("MIKA_TOOLCHAIN_CC", "cc")
	t.Setenv("MIKA_DEBUG", "true")

	cfg, err := LoadConfig(Options{Dir: "/proj"})
	require.NoError(t, err)
	assert.Equal(t, "cc", cfg.Toolchain.CC)
	assert.True(t, cfg.Debug)
}

func TestLoadConfigDotEnv(t *testing.T) {
	fs := useMemFs(t)
	unsetAfter(t, "MIKA_HISTORY_DRIVER", "MIKA_RUNTIME_DIR")

	require.NoError(t, afero.WriteFile(fs, "/proj/.env",
		[]byte("MIKA_HISTORY_DRIVER=mysql\nMIKA_RUNTIME_DIR=/from/env/mika\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/.env.local",
		[]byte("MIKA_RUNTIME_DIR=/from/local/mika\n"), 0o644))

	cfg, err := LoadConfig(Options{Dir: "/proj"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.History.Driver)
	assert.Equal(t, "/from/local/mika", cfg.Runtime.Dir)
}

func TestDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	fs := useMemFs(t)
	t.Setenv("MIKA_TOOLCHAIN_CC", "clang")
	require.NoError(t, afero.WriteFile(fs, "/proj/.env", []byte("MIKA_TOOLCHAIN_CC=tcc\n"), 0o644))

	cfg, err := LoadConfig(Options{Dir: "/proj"})
	require.NoError(t, err)
	assert.Equal(t, "clang", cfg.Toolchain.CC)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	fs := useMemFs(t)
	require.NoError(t, afero.WriteFile(fs, "/proj/.mika.yaml", []byte("toolchain: [unclosed\n"), 0o644))

	_, err := LoadConfig(Options{Dir: "/proj"})
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	useMemFs(t)

	cfg := Default()
	cfg.Toolchain.CC = "clang"
	cfg.Translator.Command = "mika2c"
	require.NoError(t, SaveConfig(cfg, "/proj/app/.mika.yaml"))

	loaded, err := LoadConfig(Options{Dir: "/proj/app"})
	require.NoError(t, err)
	assert.Equal(t, "clang", loaded.Toolchain.CC)
	assert.Equal(t, "mika2c", loaded.Translator.Command)
	assert.Equal(t, cfg.Runtime.Dir, loaded.Runtime.Dir)
}
