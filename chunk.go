// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package lox

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Chunk holds the instructions of a single function, the source line of
// each instruction and the constants referenced by index.
type Chunk struct {
	Code      []Instruction
	Lines     []int
	Constants []Value
}

// Write appends an instruction with its source line and returns its position.
func (c *Chunk) Write(ins Instruction, line int) int {
	pos := len(c.Code)
	c.Code = append(c.Code, ins)
	c.Lines = append(c.Lines, line)
	return pos
}

// AddConstant appends a constant and returns its index. Indexes never change.
func (c *Chunk) AddConstant(v Value) int {
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Len returns the number of instructions.
func (c *Chunk) Len() int {
	return len(c.Code)
}

// JumpTarget returns the position an OpJump, OpJumpIfFalse or OpLoop at pos
// transfers control to. ok is false for other instructions.
func (c *Chunk) JumpTarget(pos int) (target int, ok bool) {
	ins := c.Code[pos]
	switch ins.Op {
	case OpJump, OpJumpIfFalse:
		return pos + 1 + ins.Operand(0), true
	case OpLoop:
		return pos + 1 - ins.Operand(0), true
	}
	return 0, false
}

// IterateInstructions calls fn for each instruction until fn returns false.
func (c *Chunk) IterateInstructions(fn func(pos int, ins Instruction) bool) {
	for i := range c.Code {
		if !fn(i, c.Code[i]) {
			break
		}
	}
}

// FormatInstruction returns a human readable form of the instruction at pos.
func (c *Chunk) FormatInstruction(pos int) string {
	var sb strings.Builder
	ins := c.Code[pos]
	fmt.Fprintf(&sb, "%04d ", pos)
	if pos > 0 && c.Lines[pos] == c.Lines[pos-1] {
		sb.WriteString("   | ")
	} else {
		fmt.Fprintf(&sb, "%4d ", c.Lines[pos])
	}
	name := "UNKNOWN"
	if int(ins.Op) < len(OpcodeNames) {
		name = OpcodeNames[ins.Op]
	}

	switch ins.Op {
	case OpConstant, OpGetGlobal, OpDefineGlobal, OpSetGlobal,
		OpGetProperty, OpSetProperty, OpGetSuper, OpClass, OpMethod:
		fmt.Fprintf(&sb, "%-16s %4d '%s'", name, ins.Operand(0),
			c.constantString(ins.Operand(0)))
	case OpInvoke, OpSuperInvoke:
		fmt.Fprintf(&sb, "%-16s (%d args) %4d '%s'", name, ins.Operand(1),
			ins.Operand(0), c.constantString(ins.Operand(0)))
	case OpJump, OpJumpIfFalse, OpLoop:
		target, _ := c.JumpTarget(pos)
		fmt.Fprintf(&sb, "%-16s %4d -> %d", name, ins.Operand(0), target)
	case OpClosure:
		fmt.Fprintf(&sb, "%-16s %4d %s", name, ins.Operand(0),
			c.constantString(ins.Operand(0)))
		for _, up := range ins.Captures() {
			kind := "upvalue"
			if up.IsLocal {
				kind = "local"
			}
			fmt.Fprintf(&sb, "\n%04d    |                     %s %d",
				pos, kind, up.Index)
		}
	default:
		if len(ins.Operands) == 0 {
			sb.WriteString(name)
			break
		}
		fmt.Fprintf(&sb, "%-16s", name)
		for _, op := range ins.Operands {
			fmt.Fprintf(&sb, " %4d", op)
		}
	}
	return sb.String()
}

func (c *Chunk) constantString(i int) string {
	if i < 0 || i >= len(c.Constants) || c.Constants[i] == nil {
		return "<invalid>"
	}
	return c.Constants[i].String()
}

// Fprint writes instructions to given Writer in a human readable form.
func (c *Chunk) Fprint(w io.Writer, name string) {
	_, _ = fmt.Fprintf(w, "== %s ==\n", name)
	for i := range c.Code {
		_, _ = fmt.Fprintln(w, c.FormatInstruction(i))
	}
}

// Function is the result of compiling a function body or a whole script.
// Nested functions are stored as constants of their enclosing function.
type Function struct {
	Name         string
	Arity        int
	UpvalueCount int
	Chunk        Chunk
}

// TypeName implements Value interface.
func (*Function) TypeName() string {
	return "function"
}

func (o *Function) String() string {
	if o.Name == "" {
		return "<script>"
	}
	return "<fn " + o.Name + ">"
}

// Fprint writes the function and all nested functions in its constant pool
// to given Writer in a human readable form.
func (o *Function) Fprint(w io.Writer) {
	_, _ = fmt.Fprintf(w, "Arity:%d Upvalues:%d Constants:%d\n",
		o.Arity, o.UpvalueCount, len(o.Chunk.Constants))
	o.Chunk.Fprint(w, o.String())
	for _, v := range o.Chunk.Constants {
		if fn, ok := v.(*Function); ok {
			_, _ = fmt.Fprintln(w)
			fn.Fprint(w)
		}
	}
}

// Disassemble returns the Fprint output as a string.
func (o *Function) Disassemble() string {
	var buf bytes.Buffer
	o.Fprint(&buf)
	return buf.String()
}
