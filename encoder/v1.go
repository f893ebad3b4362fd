// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package encoder

import (
	"fmt"

	"github.com/ozanh/lox"
)

type constKind uint8

const (
	constNumber constKind = iota + 1
	constString
	constFunction
)

type fileV1 struct {
	Magic   string      `cbor:"1,keyasint"`
	Version uint16      `cbor:"2,keyasint"`
	Main    *functionV1 `cbor:"3,keyasint"`
}

type functionV1 struct {
	Name      string          `cbor:"1,keyasint,omitempty"`
	Arity     int             `cbor:"2,keyasint"`
	Upvalues  int             `cbor:"3,keyasint"`
	Code      []instructionV1 `cbor:"4,keyasint"`
	Lines     []int           `cbor:"5,keyasint"`
	Constants []constantV1    `cbor:"6,keyasint,omitempty"`
}

type instructionV1 struct {
	_        struct{} `cbor:",toarray"`
	Op       uint8
	Operands []int
}

type constantV1 struct {
	Kind     constKind   `cbor:"1,keyasint"`
	Number   float64     `cbor:"2,keyasint,omitempty"`
	String   string      `cbor:"3,keyasint,omitempty"`
	Function *functionV1 `cbor:"4,keyasint,omitempty"`
}

func fromFunction(fn *lox.Function) (*functionV1, error) {
	out := &functionV1{
		Name:     fn.Name,
		Arity:    fn.Arity,
		Upvalues: fn.UpvalueCount,
		Lines:    fn.Chunk.Lines,
	}
	out.Code = make([]instructionV1, len(fn.Chunk.Code))
	for i, ins := range fn.Chunk.Code {
		out.Code[i] = instructionV1{Op: ins.Op, Operands: ins.Operands}
	}
	if len(fn.Chunk.Constants) > 0 {
		out.Constants = make([]constantV1, len(fn.Chunk.Constants))
	}
	for i, v := range fn.Chunk.Constants {
		switch v := v.(type) {
		case lox.Number:
			out.Constants[i] = constantV1{Kind: constNumber, Number: float64(v)}
		case lox.String:
			out.Constants[i] = constantV1{Kind: constString, String: string(v)}
		case *lox.Function:
			nested, err := fromFunction(v)
			if err != nil {
				return nil, err
			}
			out.Constants[i] = constantV1{Kind: constFunction, Function: nested}
		default:
			return nil, fmt.Errorf("encoder: unsupported constant type %T in %s",
				v, fn)
		}
	}
	return out, nil
}

func (f *fileV1) toFunction() (*lox.Function, error) {
	if f.Magic != Magic {
		return nil, fmt.Errorf("encoder: %w: signature mismatch", ErrInvalidData)
	}
	if f.Version != Version {
		return nil, fmt.Errorf("encoder: %w: unsupported version:%d",
			ErrInvalidData, f.Version)
	}
	if f.Main == nil {
		return nil, fmt.Errorf("encoder: %w: missing script function",
			ErrInvalidData)
	}
	return f.Main.toFunction()
}

func (f *functionV1) toFunction() (*lox.Function, error) {
	fn := &lox.Function{
		Name:         f.Name,
		Arity:        f.Arity,
		UpvalueCount: f.Upvalues,
	}
	if f.Arity < 0 || f.Upvalues < 0 {
		return nil, f.errorf("negative arity or upvalue count")
	}
	if len(f.Code) != len(f.Lines) {
		return nil, f.errorf("%d instructions but %d lines",
			len(f.Code), len(f.Lines))
	}
	if len(f.Code) > 0 {
		fn.Chunk.Code = make([]lox.Instruction, len(f.Code))
		fn.Chunk.Lines = make([]int, len(f.Lines))
		copy(fn.Chunk.Lines, f.Lines)
	}
	for i, ins := range f.Code {
		if int(ins.Op) >= lox.NumOpcodes {
			return nil, f.errorf("unknown opcode %d at %d", ins.Op, i)
		}
		inst, err := lox.MakeInstruction(ins.Op, ins.Operands...)
		if err != nil {
			return nil, f.errorf("instruction at %d: %v", i, err)
		}
		fn.Chunk.Code[i] = inst
	}
	if len(f.Constants) > 0 {
		fn.Chunk.Constants = make([]lox.Value, len(f.Constants))
	}
	for i, c := range f.Constants {
		switch c.Kind {
		case constNumber:
			fn.Chunk.Constants[i] = lox.Number(c.Number)
		case constString:
			fn.Chunk.Constants[i] = lox.String(c.String)
		case constFunction:
			if c.Function == nil {
				return nil, f.errorf("constant %d: missing function", i)
			}
			nested, err := c.Function.toFunction()
			if err != nil {
				return nil, err
			}
			fn.Chunk.Constants[i] = nested
		default:
			return nil, f.errorf("constant %d: unknown kind %d", i, c.Kind)
		}
	}
	return fn, nil
}

func (f *functionV1) errorf(format string, args ...interface{}) error {
	name := f.Name
	if name == "" {
		name = "<script>"
	}
	return fmt.Errorf("encoder: %w: %s: %s",
		ErrInvalidData, name, fmt.Sprintf(format, args...))
}
