// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

//go:build !js
// +build !js

package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/tliron/commonlog"

	"github.com/ozanh/lox"
	"github.com/ozanh/lox/config"
	"github.com/ozanh/lox/encoder"
	"github.com/ozanh/lox/importers"
	"github.com/ozanh/lox/token"

	_ "github.com/tliron/commonlog/simple"
)

const (
	title         = "lox"
	promptPrefix  = ">>> "
	promptPrefix2 = "... "
)

// Exit codes
const (
	exitOK           = 0
	exitFailure      = 1
	exitUsage        = 64
	exitCompileError = 65
	exitIOError      = 74
)

var log = commonlog.GetLogger("lox")

var suggestions []suggest

// Sentinel errors for repl.
var (
	errExit  = errors.New("exit")
	errReset = errors.New("reset")
)

type suggest struct {
	text        string
	description string
	typ         string
}

type options struct {
	filePath  string
	disasm    bool
	trace     bool
	output    string
	format    string
	decode    string
	configDir string
	verbosity int
	logPath   *string
}

type repl struct {
	out          io.Writer
	commands     map[string]func(string) error
	script       *bytes.Buffer
	lastFunction *lox.Function
	isMultiline  bool
	trace        bool
}

func newREPL(stdout io.Writer, trace bool) *repl {
	if stdout == nil {
		stdout = os.Stdout
	}
	r := &repl{
		out:    stdout,
		script: bytes.NewBuffer(nil),
		trace:  trace,
	}
	r.commands = map[string]func(string) error{
		".commands": r.cmdCommands,
		".help":     r.cmdCommands,
		".keywords": r.cmdKeywords,
		".bytecode": r.cmdBytecode,
		".trace":    r.cmdTrace,
		".reset":    func(string) error { return errReset },
		".exit":     func(string) error { return errExit },
	}
	return r
}

func (r *repl) cmdCommands(_ string) error {
	suggs, pad := r.rangeSuggestions(
		func(s suggest) bool { return s.typ == "" },
	)
	r.printSuggestions(suggs, pad)
	return nil
}

func (r *repl) cmdKeywords(_ string) error {
	suggs, pad := r.rangeSuggestions(
		func(s suggest) bool { return s.typ == "keyword" },
	)
	sort.Slice(suggs, func(i, j int) bool {
		return suggs[i].text < suggs[j].text
	})
	r.printSuggestions(suggs, pad)
	return nil
}

func (r *repl) cmdBytecode(_ string) error {
	if r.lastFunction == nil {
		_, _ = fmt.Fprintln(r.out, "<nil>")
		return nil
	}
	r.lastFunction.Fprint(r.out)
	return nil
}

func (r *repl) cmdTrace(_ string) error {
	r.trace = !r.trace
	_, _ = fmt.Fprintf(r.out, "trace: %v\n", r.trace)
	return nil
}

func (*repl) rangeSuggestions(filter func(suggest) bool) ([]suggest, int) {
	var suggs []suggest
	var maxtext int
	for _, v := range suggestions {
		if !filter(v) {
			continue
		}
		suggs = append(suggs, v)
		if maxtext < len(v.text) {
			maxtext = len(v.text)
		}
	}
	return suggs, maxtext
}

func (r *repl) printSuggestions(suggs []suggest, maxtext int) {
	const spaces = "                                                           "
	for _, cmd := range suggs {
		_, _ = fmt.Fprintf(r.out, "%s", cmd.text)
		if len(cmd.description) > 0 {
			_, _ = fmt.Fprintf(r.out, "%s", spaces[:maxtext-len(cmd.text)])
			_, _ = fmt.Fprintf(r.out, "\t%v", cmd.description)
		}
		_, _ = fmt.Fprintln(r.out)
	}
}

func (r *repl) writeString(msg string) {
	_, _ = fmt.Fprint(r.out, msg)
	_, _ = fmt.Fprintln(r.out)
}

func (r *repl) execute(line string) error {
	switch {
	case !r.isMultiline && line == "":
		return nil
	case !r.isMultiline && len(line) > 0 && line[0] == '.':
		cmd := strings.Fields(line)[0]
		if fn, ok := r.commands[cmd]; ok {
			return fn(line)
		}
	case strings.HasSuffix(line, "\\"):
		r.isMultiline = true
		r.script.WriteString(line[:len(line)-1])
		r.script.WriteString("\n")
		return nil
	}

	r.script.WriteString(line)

	r.compileScript()

	r.isMultiline = false
	r.script.Reset()
	return nil
}

func (r *repl) compileScript() {
	opts := lox.DefaultCompilerOptions
	if r.trace {
		opts.Trace = r.out
		opts.TraceCompiler = true
	}
	fn, err := lox.Compile(r.script.Bytes(), opts)
	if err != nil {
		var list lox.ErrorList
		if errors.As(err, &list) {
			for _, e := range list {
				r.writeString(fmt.Sprintf("!   %s", e))
			}
			return
		}
		r.writeString(fmt.Sprintf("!   %+v", err))
		return
	}
	r.lastFunction = fn
	fn.Fprint(r.out)
}

func (r *repl) prefix() string {
	if r.isMultiline {
		return promptPrefix2
	}
	return promptPrefix
}

func (r *repl) printInfo() {
	_, _ = fmt.Fprintln(r.out, "Copyright (c) 2020-2023 Ozan Hacıbekiroğlu")
	_, _ = fmt.Fprintln(r.out, "License: MIT",
		"Build:", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintln(r.out, "Each entry is compiled and its bytecode is printed")
	_, _ = fmt.Fprintln(r.out, "Write .commands to list available commands")
	_, _ = fmt.Fprintln(r.out, "Press Ctrl+D or write .exit command to exit")
	_, _ = fmt.Fprintln(r.out)
}

func (r *repl) run(history io.Reader) error {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)
	line.SetCompleter(complete)
	_, err := line.ReadHistory(history)
	if err != nil {
		return fmt.Errorf("failed history read: %w", err)
	}
	r.printInfo()

	var str string

	for err == nil {
		str, err = line.Prompt(r.prefix())
		if err != nil {
			if err == io.EOF || err == liner.ErrPromptAborted {
				err = nil
				break
			}
			err = fmt.Errorf("prompt error: %w", err)
			break
		}
		err = r.execute(str)
		if err == nil {
			if !r.isMultiline && len(str) > 0 {
				if v := strings.TrimSpace(str); len(v) > 0 {
					line.AppendHistory(v)
				}
			}
		}
	}
	return err
}

func complete(line string) (completions []string) {
	var contains []string
	for _, v := range suggestions {
		if strings.HasPrefix(v.text, line) {
			completions = append(completions, v.text)
		} else if strings.Contains(v.text, line) {
			contains = append(contains, v.text)
		}
	}
	completions = append(completions, contains...)
	return
}

func initSuggestions() {
	suggestions = []suggest{
		// Commands
		{text: ".commands", description: "Print REPL commands"},
		{text: ".help", description: "Print REPL commands"},
		{text: ".keywords", description: "Print Keywords"},
		{text: ".bytecode", description: "Print Last Compiled Bytecode"},
		{text: ".trace", description: "Toggle Compiler Trace"},
		{text: ".reset", description: "Reset"},
		{text: ".exit", description: "Exit"},
	}
	for _, kw := range token.Keywords() {
		suggestions = append(suggestions, suggest{
			text: kw,
			typ:  "keyword",
		})
	}
}

func parseFlags(flagset *flag.FlagSet, args []string) (*options, error) {
	opts := &options{}
	flagset.BoolVar(&opts.disasm, "disasm", false,
		"Print disassembly of the compiled script")
	flagset.BoolVar(&opts.trace, "trace", false, "Print compiler trace")
	flagset.StringVar(&opts.output, "o", "",
		"Write the compiled script to the file")
	flagset.StringVar(&opts.format, "format", "",
		`Output format of -o, "binary" or "text"`)
	flagset.StringVar(&opts.decode, "decode", "",
		"Read a compiled script from the file and print its disassembly")
	flagset.StringVar(&opts.configDir, "config", "",
		"Directory to search "+config.FileName+" from, defaults to working directory")
	flagset.IntVar(&opts.verbosity, "v", 0, "Log verbosity")

	flagset.Usage = func() {
		_, _ = fmt.Fprint(flagset.Output(),
			"Usage: lox [flags] [lox script file]\n\n",
			"If script file is not provided, REPL terminal application is started\n",
			"Use - to read from stdin\n\n",
			"\nFlags:\n",
		)
		flagset.PrintDefaults()
	}

	if err := flagset.Parse(args); err != nil {
		return nil, err
	}
	if flagset.NArg() > 1 {
		return nil, fmt.Errorf("too many arguments: %s",
			strings.Join(flagset.Args(), " "))
	}
	if flagset.NArg() == 1 {
		opts.filePath = flagset.Arg(0)
	}

	dir := opts.configDir
	if dir == "" {
		dir = "."
	}
	cfg, err := config.FindAndLoad(dir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	set := make(map[string]bool)
	flagset.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyConfig(opts, cfg, set)

	switch opts.format {
	case config.FormatBinary, config.FormatText:
	default:
		return nil, fmt.Errorf("unknown output format %q", opts.format)
	}
	return opts, nil
}

// applyConfig sets the options not given as flags from the configuration.
func applyConfig(opts *options, cfg *config.Config, set map[string]bool) {
	if !set["disasm"] {
		opts.disasm = cfg.Compiler.Disassemble
	}
	if !set["trace"] {
		opts.trace = cfg.Compiler.Trace
	}
	if !set["o"] {
		opts.output = cfg.OutputPath()
	}
	if !set["format"] {
		opts.format = cfg.Output.Format
	}
	if !set["v"] {
		opts.verbosity = cfg.Log.Verbosity
	}
	opts.logPath = cfg.LogPath()
}

func compileScript(
	name string,
	script []byte,
	opts *options,
	stdout io.Writer,
	stderr io.Writer,
) (*lox.Function, error) {
	copts := lox.DefaultCompilerOptions
	copts.Diagnostics = stderr
	if opts.trace {
		copts.Trace = stdout
		copts.TraceCompiler = true
	}

	log.Debugf("compiling %s (%d bytes)", name, len(script))
	fn, err := lox.Compile(script, copts)
	if err != nil {
		log.Infof("%s: %s", name, err)
		return nil, err
	}
	if opts.disasm {
		fn.Fprint(stdout)
	}
	if opts.output != "" {
		if err = writeOutput(opts.output, opts.format, fn); err != nil {
			return nil, err
		}
		log.Infof("%s written to %s", name, opts.output)
	}
	return fn, nil
}

func writeOutput(path, format string, fn *lox.Function) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err = os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if format == config.FormatText {
		fn.Fprint(f)
		return nil
	}
	return encoder.Encode(f, fn)
}

// readScript reads the script at path, "-" reads stdin. A leading shebang line
// is turned into a comment.
func readScript(path string, stdin io.Reader) (string, []byte, error) {
	if path == "-" {
		script, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, err
		}
		importers.Shebang2Slashes(script)
		return "(stdin)", script, nil
	}
	imp := &importers.FileImporter{
		WorkDir:    ".",
		FileReader: importers.ShebangReadFile,
	}
	script, err := imp.Import(path)
	if err != nil {
		return "", nil, err
	}
	return imp.Name(path), script, nil
}

func decodeFile(path string, stdout io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fn, err := encoder.Decode(f)
	if err != nil {
		return err
	}
	log.Debugf("decoded %s", path)
	fn.Fprint(stdout)
	return nil
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var list lox.ErrorList
	if errors.As(err, &list) || errors.Is(err, encoder.ErrInvalidData) {
		return exitCompileError
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return exitIOError
	}
	return exitFailure
}

func hasMode(f *os.File, m os.FileMode) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&m == m
}

func hasInputRedirection() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeNamedPipe == os.ModeNamedPipe ||
		info.Size() > 0
}

func setTerminalTitle(title string) {
	if runtime.GOOS == "windows" {
		return
	}

	titleBytes := bytes.ReplaceAll([]byte(title), []byte{0x13}, []byte{})
	titleBytes = bytes.ReplaceAll(titleBytes, []byte{0x07}, []byte{})

	_, _ = os.Stdout.Write([]byte{0x1b, ']', '2', ';'})
	_, _ = os.Stdout.Write(titleBytes)
	_, _ = os.Stdout.Write([]byte{0x07})
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
	commonlog.Configure(opts.verbosity, opts.logPath)

	if opts.decode != "" {
		err = decodeFile(opts.decode, os.Stdout)
		checkErr(err)
		return
	}

	if len(opts.filePath) == 0 && hasInputRedirection() {
		opts.filePath = "-"
	}

	if len(opts.filePath) > 0 {
		name, script, err := readScript(opts.filePath, os.Stdin)
		checkErr(err)
		_, err = compileScript(name, script, opts, os.Stdout, os.Stderr)
		checkErr(err)
		return
	}

	if !hasMode(os.Stdout, os.ModeCharDevice) {
		_, _ = fmt.Fprintln(os.Stderr, "not a terminal")
		os.Exit(exitFailure)
	}

	initSuggestions()
	setTerminalTitle(title)

	const history = "var a = 1;\n" +
		"fun add(a, b) { return a + b; }\n" +
		"class A { init(x) { this.x = x; } }\n" +
		"for (var i = 0; i < 3; i = i + 1) print i;\n"

L:
	for {
		hist := strings.NewReader(history)

		err = newREPL(os.Stdout, opts.trace).run(hist)
		if err != nil {
			switch err {
			case errReset:
				continue
			case errExit:
				break L
			}
			checkErr(err)
		}
		break
	}
}

func checkErr(err error) {
	if err == nil {
		return
	}
	var list lox.ErrorList
	if !errors.As(err, &list) {
		// compile errors are already written as diagnostics
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
	}
	log.Debugf("exit: %s", err)
	os.Exit(exitCode(err))
}
