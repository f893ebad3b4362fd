package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/ozanh/lox/config"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName),
		[]byte(content), 0644))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
[compiler]
trace = true
disassemble = true

[output]
path = "out/script.loxc"
format = "text"

[log]
verbosity = 2
file = "lox.log"
`)
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.True(t, cfg.Compiler.Trace)
	require.True(t, cfg.Compiler.Disassemble)
	require.Equal(t, FormatText, cfg.Output.Format)
	require.Equal(t, 2, cfg.Log.Verbosity)

	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	require.Equal(t, abs, cfg.Dir)
	require.Equal(t, filepath.Join(abs, "out", "script.loxc"), cfg.OutputPath())
	require.NotNil(t, cfg.LogPath())
	require.Equal(t, filepath.Join(abs, "lox.log"), *cfg.LogPath())
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.False(t, cfg.Compiler.Trace)
	require.Equal(t, FormatBinary, cfg.Output.Format)
	require.Equal(t, "", cfg.OutputPath())
	require.Nil(t, cfg.LogPath())

	def := Default()
	require.Equal(t, FormatBinary, def.Output.Format)
	require.Equal(t, "", def.Dir)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "cannot read")

	dir := t.TempDir()
	writeConfig(t, dir, "[compiler\ntrace = 1")
	_, err = Load(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse error")

	_, err = Parse([]byte("[output]\nformat = \"yaml\""))
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown output format "yaml"`)

	_, err = Parse([]byte("[log]\nverbosity = -1"))
	require.Error(t, err)

	_, err = Parse([]byte("[compiler]\ntrace = \"yes\""))
	require.Error(t, err)
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[compiler]\ndisassemble = true\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	cfg, err := FindAndLoad(nested)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	require.True(t, cfg.Compiler.Disassemble)
	abs, err := filepath.Abs(root)
	require.NoError(t, err)
	require.Equal(t, abs, cfg.Dir)

	// absolute paths are kept as is
	cfg.Output.Path = filepath.Join(abs, "x.loxc")
	require.Equal(t, cfg.Output.Path, cfg.OutputPath())
}
