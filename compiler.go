// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package lox

import (
	"fmt"
	"io"
	"os"

	"github.com/ozanh/lox/scanner"
	"github.com/ozanh/lox/token"
)

const (
	maxLocals    = 256
	maxUpvalues  = 256
	maxArgs      = 255
	maxConstants = 1 << 16
)

// CompilerOptions represents customizable options for Compile().
type CompilerOptions struct {
	// Diagnostics receives one line per compile error as it is reported.
	Diagnostics   io.Writer
	Trace         io.Writer
	TraceCompiler bool
}

var (
	// DefaultCompilerOptions holds default Compiler options.
	DefaultCompilerOptions = CompilerOptions{}
	// TraceCompilerOptions holds Compiler options to print trace output
	// to stdout.
	TraceCompilerOptions = CompilerOptions{
		Trace:         os.Stdout,
		TraceCompiler: true,
	}
)

// FunctionKind tells what kind of body a frame compiles.
type FunctionKind int

// List of function kinds
const (
	KindScript FunctionKind = iota
	KindFunction
	KindMethod
	KindInitializer
)

func (k FunctionKind) String() string {
	switch k {
	case KindScript:
		return "script"
	case KindFunction:
		return "function"
	case KindMethod:
		return "method"
	case KindInitializer:
		return "initializer"
	}
	return "kind(" + fmt.Sprint(int(k)) + ")"
}

// frame is the compile state of one function body. Frames are kept in
// Compiler.frames and refer to their enclosing frame by index.
type frame struct {
	fn         *Function
	kind       FunctionKind
	enclosing  int // -1 for the script frame
	locals     []Local
	upvalues   []Upvalue
	scopeDepth int
}

// classContext tracks the class declaration being compiled.
type classContext struct {
	enclosing     *classContext
	hasSuperclass bool
}

// Compiler compiles source into a script Function in a single pass.
// A Compiler is used once, it is not safe for concurrent use.
type Compiler struct {
	scanner   *scanner.Scanner
	current   token.Token
	previous  token.Token
	frames    []*frame
	class     *classContext
	errors    ErrorList
	panicMode bool
	result    *Function
	opts      CompilerOptions
	trace     io.Writer
	indent    int
}

// NewCompiler creates a new Compiler object for the source.
func NewCompiler(src string, opts CompilerOptions) *Compiler {
	var trace io.Writer
	if opts.TraceCompiler {
		trace = opts.Trace
	}
	return &Compiler{
		scanner: scanner.New(src),
		opts:    opts,
		trace:   trace,
	}
}

// Compile compiles given script. The returned Function is never nil, it is
// the best effort result if there are errors and must not be run in that case.
func Compile(script []byte, opts CompilerOptions) (*Function, error) {
	c := NewCompiler(string(script), opts)
	fn := c.Compile()
	return fn, c.errors.Err()
}

// Compile compiles the source and returns the script function. Calling it
// again returns the same function.
func (c *Compiler) Compile() *Function {
	if c.result != nil {
		return c.result
	}
	c.beginFrame(KindScript)
	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.result, _ = c.endFrame()
	return c.result
}

// HadError returns true if any error is reported.
func (c *Compiler) HadError() bool {
	return len(c.errors) > 0
}

// Errors returns reported errors in report order.
func (c *Compiler) Errors() ErrorList {
	return c.errors
}

func (c *Compiler) frame() *frame {
	return c.frames[len(c.frames)-1]
}

func (c *Compiler) chunk() *Chunk {
	return &c.frame().fn.Chunk
}

func (c *Compiler) beginFrame(kind FunctionKind) {
	fn := &Function{}
	if kind != KindScript {
		fn.Name = c.previous.Lexeme
	}
	f := &frame{
		fn:        fn,
		kind:      kind,
		enclosing: len(c.frames) - 1,
	}
	// slot 0 holds the callee, or the receiver for methods
	slot0 := ""
	if kind == KindMethod || kind == KindInitializer {
		slot0 = "this"
	}
	f.locals = append(f.locals, Local{
		Name:        token.NewSynthetic(slot0, c.previous.Line),
		Initialized: true,
	})
	c.frames = append(c.frames, f)
	if c.trace != nil {
		c.printTrace(fmt.Sprintf("FRAME %s (%s) {", fn, kind))
		c.indent++
	}
}

// endFrame finishes the active frame and returns its function and the
// upvalue descriptors the enclosing frame must emit after OpClosure.
func (c *Compiler) endFrame() (*Function, []Upvalue) {
	if !c.endsWithReturn() {
		c.emitReturn()
	}
	f := c.frame()
	f.fn.UpvalueCount = len(f.upvalues)
	c.frames = c.frames[:len(c.frames)-1]
	if c.trace != nil {
		c.indent--
		c.printTrace("}")
	}
	return f.fn, f.upvalues
}

// endsWithReturn reports whether the last instruction is a return and no
// jump lands past it.
func (c *Compiler) endsWithReturn() bool {
	ch := c.chunk()
	n := ch.Len()
	if n == 0 || ch.Code[n-1].Op != OpReturn {
		return false
	}
	landsAtEnd := false
	ch.IterateInstructions(func(pos int, ins Instruction) bool {
		if ins.IsJump() {
			if target, _ := ch.JumpTarget(pos); target >= n {
				landsAtEnd = true
				return false
			}
		}
		return true
	})
	return !landsAtEnd
}

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.scanner.Next()
		if c.current.Kind != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) consume(kind token.Kind, msg string) {
	if c.current.Kind == kind {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) check(kind token.Kind) bool {
	return c.current.Kind == kind
}

func (c *Compiler) match(kind token.Kind) bool {
	if !c.check(kind) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) emit(op Opcode, operands ...int) int {
	inst, err := MakeInstruction(op, operands...)
	if err != nil {
		panic(err)
	}
	ch := c.chunk()
	pos := ch.Write(inst, c.previous.Line)
	if c.trace != nil {
		c.printTrace("EMIT ", ch.FormatInstruction(pos))
	}
	return pos
}

// emitJump emits a jump with a placeholder offset and returns its position.
func (c *Compiler) emitJump(op Opcode) int {
	return c.emit(op, 0)
}

// patchJump sets the offset of the jump at pos to land at the end of code.
func (c *Compiler) patchJump(pos int) {
	offset := c.chunk().Len() - pos - 1
	c.changeOperand(pos, offset)
}

// emitLoop emits a backward jump to loopStart.
func (c *Compiler) emitLoop(loopStart int) {
	offset := c.chunk().Len() - loopStart + 1
	c.emit(OpLoop, offset)
}

func (c *Compiler) changeOperand(pos int, operand int) {
	ch := c.chunk()
	op := ch.Code[pos].Op
	if op != OpJump && op != OpJumpIfFalse {
		panic(fmt.Errorf("changeOperand: %s at %d is not a jump",
			OpcodeNames[op], pos))
	}
	inst, err := MakeInstruction(op, operand)
	if err != nil {
		panic(err)
	}
	ch.Code[pos] = inst
	if c.trace != nil {
		c.printTrace("PATCH", ch.FormatInstruction(pos))
	}
}

func (c *Compiler) emitReturn() {
	if c.frame().kind == KindInitializer {
		c.emit(OpGetLocal, 0)
	} else {
		c.emit(OpNil)
	}
	c.emit(OpReturn)
}

func (c *Compiler) makeConstant(v Value) int {
	ch := c.chunk()
	if len(ch.Constants) >= maxConstants {
		c.error("Too many constants in one chunk.")
		return 0
	}
	index := ch.AddConstant(v)
	if c.trace != nil {
		c.printTrace(fmt.Sprintf("CONST %04d %s", index, v))
	}
	return index
}

func (c *Compiler) emitConstant(v Value) {
	c.emit(OpConstant, c.makeConstant(v))
}

func (c *Compiler) identifierConstant(name token.Token) int {
	return c.makeConstant(String(name.Lexeme))
}

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	e := newCompilerError(tok, msg)
	c.errors.Add(e)
	if c.opts.Diagnostics != nil {
		_, _ = fmt.Fprintln(c.opts.Diagnostics, e.Error())
	}
	if c.trace != nil {
		c.printTrace("ERROR", e.Error())
	}
}

func (c *Compiler) error(msg string) {
	c.errorAt(c.previous, msg)
}

func (c *Compiler) errorAtCurrent(msg string) {
	c.errorAt(c.current, msg)
}

// synchronize skips tokens until a statement boundary to leave panic mode.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.Semicolon {
			return
		}
		switch c.current.Kind {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}

func (c *Compiler) printTrace(a ...interface{}) {
	const (
		dots = ". . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . "
		n    = len(dots)
	)

	i := 2 * c.indent
	for i > n {
		_, _ = fmt.Fprint(c.trace, dots)
		i -= n
	}
	_, _ = fmt.Fprint(c.trace, dots[0:i])
	_, _ = fmt.Fprintln(c.trace, a...)
}
