//go:build !js
// +build !js

package main

import (
	"bytes"
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ozanh/lox"
	"github.com/ozanh/lox/config"
	"github.com/ozanh/lox/encoder"
)

func TestREPL(t *testing.T) {
	initSuggestions()
	stdout := bytes.NewBuffer(nil)
	r := newREPL(stdout, false)

	require.NoError(t, r.execute(""))
	require.Empty(t, testReadAll(t, stdout))

	require.NoError(t, r.execute("print 1 + 2;"))
	out := string(testReadAll(t, stdout))
	testHasPrefix(t, out, "Arity:0 Upvalues:0 Constants:2\n== <script> ==\n")
	require.Contains(t, out, "ADD")
	require.NotNil(t, r.lastFunction)

	require.NoError(t, r.execute(".bytecode"))
	require.Equal(t, out, string(testReadAll(t, stdout)))

	require.NoError(t, r.execute("print 1"))
	require.Equal(t, "!   [line 1] at end: Expect ';' after value.\n",
		string(testReadAll(t, stdout)))

	require.NoError(t, r.execute("fun f() {\\"))
	require.True(t, r.isMultiline)
	require.Equal(t, promptPrefix2, r.prefix())
	require.NoError(t, r.execute("  return 1; }"))
	require.False(t, r.isMultiline)
	require.Equal(t, promptPrefix, r.prefix())
	require.Contains(t, string(testReadAll(t, stdout)), "== <fn f> ==")

	require.NoError(t, r.execute(".trace"))
	require.Equal(t, "trace: true\n", string(testReadAll(t, stdout)))
	require.NoError(t, r.execute("nil;"))
	require.Contains(t, string(testReadAll(t, stdout)), "FRAME <script> (script) {")
	require.NoError(t, r.execute(".trace"))
	require.Equal(t, "trace: false\n", string(testReadAll(t, stdout)))

	require.NoError(t, r.execute(".help"))
	testHasPrefix(t, string(testReadAll(t, stdout)), ".commands")

	require.NoError(t, r.execute(".keywords"))
	testHasPrefix(t, string(testReadAll(t, stdout)), "and\nclass\n")

	require.Equal(t, errReset, r.execute(".reset"))
	require.Equal(t, errExit, r.execute(".exit"))
	require.Empty(t, testReadAll(t, stdout))
}

func TestComplete(t *testing.T) {
	initSuggestions()
	require.Equal(t, []string{".trace"}, complete(".tr"))
	require.Equal(t, []string{"class"}, complete("cla"))
	// prefix matches come before substring matches
	got := complete("s")
	require.NotEmpty(t, got)
	require.Equal(t, "super", got[0])
}

func TestParseFlags(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(`
[compiler]
disassemble = true
trace = true

[output]
path = "out.loxc"
format = "text"

[log]
verbosity = 3
`), 0644))

	opts, err := parseFlags(newFlagSet(), []string{"-config", dir, "script.lox"})
	require.NoError(t, err)
	require.Equal(t, "script.lox", opts.filePath)
	require.True(t, opts.disasm)
	require.True(t, opts.trace)
	require.Equal(t, config.FormatText, opts.format)
	require.Equal(t, 3, opts.verbosity)
	abs, err := filepath.Abs(dir)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(abs, "out.loxc"), opts.output)
	require.Nil(t, opts.logPath)

	// flags win over the configuration
	opts, err = parseFlags(newFlagSet(), []string{"-config", dir,
		"-disasm=false", "-o", "x.bin", "-format", "binary", "-v", "1"})
	require.NoError(t, err)
	require.Equal(t, "", opts.filePath)
	require.False(t, opts.disasm)
	require.True(t, opts.trace)
	require.Equal(t, "x.bin", opts.output)
	require.Equal(t, config.FormatBinary, opts.format)
	require.Equal(t, 1, opts.verbosity)

	_, err = parseFlags(newFlagSet(), []string{"-config", dir, "-format", "yaml"})
	require.Error(t, err)
	_, err = parseFlags(newFlagSet(), []string{"-config", dir, "a.lox", "b.lox"})
	require.Error(t, err)
	_, err = parseFlags(newFlagSet(), []string{"-unknown"})
	require.Error(t, err)
}

func TestCompileScript(t *testing.T) {
	dir := t.TempDir()
	binPath := filepath.Join(dir, "out", "script.loxc")
	opts := &options{
		disasm: true,
		output: binPath,
		format: config.FormatBinary,
	}
	var stdout, stderr bytes.Buffer
	src := []byte("var a = 1;\nfun f(x) { return x + a; }\nprint f(2);\n")
	fn, err := compileScript("test.lox", src, opts, &stdout, &stderr)
	require.NoError(t, err)
	require.Empty(t, stderr.String())
	require.Equal(t, fn.Disassemble(), stdout.String())

	stdout.Reset()
	require.NoError(t, decodeFile(binPath, &stdout))
	require.Equal(t, fn.Disassemble(), stdout.String())

	f, err := os.Open(binPath)
	require.NoError(t, err)
	decoded, err := encoder.Decode(f)
	require.NoError(t, f.Close())
	require.NoError(t, err)
	require.Equal(t, fn, decoded)

	textPath := filepath.Join(dir, "script.txt")
	opts = &options{output: textPath, format: config.FormatText}
	stdout.Reset()
	fn, err = compileScript("test.lox", src, opts, &stdout, &stderr)
	require.NoError(t, err)
	require.Empty(t, stdout.String())
	data, err := os.ReadFile(textPath)
	require.NoError(t, err)
	require.Equal(t, fn.Disassemble(), string(data))

	// a text file is not a valid encoded script
	err = decodeFile(textPath, &stdout)
	require.ErrorIs(t, err, encoder.ErrInvalidData)
	require.Equal(t, exitCompileError, exitCode(err))
}

func TestCompileScriptErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	opts := &options{disasm: true, format: config.FormatBinary}
	fn, err := compileScript("bad.lox", []byte("print 1\nprint 2;"), opts,
		&stdout, &stderr)
	require.Nil(t, fn)
	require.Error(t, err)
	require.Empty(t, stdout.String())
	require.Equal(t, "[line 2] at 'print': Expect ';' after value.\n",
		stderr.String())
	require.Equal(t, exitCompileError, exitCode(err))

	err = decodeFile(filepath.Join(t.TempDir(), "missing.loxc"), &stdout)
	require.Error(t, err)
	require.Equal(t, exitIOError, exitCode(err))

	require.Equal(t, exitOK, exitCode(nil))
	require.Equal(t, exitFailure, exitCode(errors.New("x")))
	require.Equal(t, exitCompileError, exitCode(lox.ErrorList{{Line: 1}}))
}

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("lox", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func testHasPrefix(t *testing.T, s, pref string) {
	t.Helper()
	v := strings.HasPrefix(s, pref)
	if !assert.True(t, v) {
		t.Fatalf("input: %q\nprefix: %q", s, pref)
	}
}

func testReadAll(t *testing.T, r io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return b
}

func TestReadScript(t *testing.T) {
	name, script, err := readScript("-",
		strings.NewReader("#!/usr/bin/env lox\nprint 1;"))
	require.NoError(t, err)
	require.Equal(t, "(stdin)", name)
	require.Equal(t, "//!/usr/bin/env lox\nprint 1;", string(script))

	path := filepath.Join(t.TempDir(), "a.lox")
	require.NoError(t, os.WriteFile(path, []byte("#!lox\nvar a;"), 0644))
	name, script, err = readScript(path, nil)
	require.NoError(t, err)
	require.Equal(t, path, name)
	require.Equal(t, "//lox\nvar a;", string(script))

	_, err = compileScript(name, script, &options{}, io.Discard, io.Discard)
	require.NoError(t, err)

	_, _, err = readScript(filepath.Join(t.TempDir(), "missing.lox"), nil)
	require.Error(t, err)
	require.Equal(t, exitIOError, exitCode(err))
}

func TestREPLInfo(t *testing.T) {
	stdout := bytes.NewBuffer(nil)
	newREPL(stdout, false).printInfo()
	out := string(testReadAll(t, stdout))
	require.True(t, strings.HasPrefix(out,
		"Copyright (c) 2020-2023 Ozan Hacıbekiroğlu\nLicense: MIT Build:"))
	require.NotContains(t, out, "https://")
}
