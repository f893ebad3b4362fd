// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package lox

import (
	"fmt"
)

// Opcode represents a single operation code.
type Opcode = byte

// List of opcodes
const (
	OpNoOp Opcode = iota
	OpConstant
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal
	OpSetLocal
	OpGetGlobal
	OpDefineGlobal
	OpSetGlobal
	OpGetUpvalue
	OpSetUpvalue
	OpGetProperty
	OpSetProperty
	OpGetSuper
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpCall
	OpInvoke
	OpSuperInvoke
	OpClosure
	OpCloseUpvalue
	OpReturn
	OpClass
	OpInherit
	OpMethod
	numOpcodes
)

// NumOpcodes is the number of defined opcodes.
const NumOpcodes = int(numOpcodes)

// OpcodeNames are string representation of opcodes.
var OpcodeNames = [...]string{
	OpNoOp:         "NOOP",
	OpConstant:     "CONSTANT",
	OpNil:          "NIL",
	OpTrue:         "TRUE",
	OpFalse:        "FALSE",
	OpPop:          "POP",
	OpGetLocal:     "GETLOCAL",
	OpSetLocal:     "SETLOCAL",
	OpGetGlobal:    "GETGLOBAL",
	OpDefineGlobal: "DEFINEGLOBAL",
	OpSetGlobal:    "SETGLOBAL",
	OpGetUpvalue:   "GETUPVALUE",
	OpSetUpvalue:   "SETUPVALUE",
	OpGetProperty:  "GETPROPERTY",
	OpSetProperty:  "SETPROPERTY",
	OpGetSuper:     "GETSUPER",
	OpEqual:        "EQUAL",
	OpGreater:      "GREATER",
	OpLess:         "LESS",
	OpAdd:          "ADD",
	OpSubtract:     "SUBTRACT",
	OpMultiply:     "MULTIPLY",
	OpDivide:       "DIVIDE",
	OpNot:          "NOT",
	OpNegate:       "NEGATE",
	OpPrint:        "PRINT",
	OpJump:         "JUMP",
	OpJumpIfFalse:  "JUMPIFFALSE",
	OpLoop:         "LOOP",
	OpCall:         "CALL",
	OpInvoke:       "INVOKE",
	OpSuperInvoke:  "SUPERINVOKE",
	OpClosure:      "CLOSURE",
	OpCloseUpvalue: "CLOSEUPVALUE",
	OpReturn:       "RETURN",
	OpClass:        "CLASS",
	OpInherit:      "INHERIT",
	OpMethod:       "METHOD",
}

// OpcodeOperands is the number of operands. OpClosure takes one fixed
// operand followed by (isLocal, index) pairs, one per captured variable.
var OpcodeOperands = [...]int{
	OpNoOp:         0,
	OpConstant:     1, // constant index
	OpNil:          0,
	OpTrue:         0,
	OpFalse:        0,
	OpPop:          0,
	OpGetLocal:     1, // local slot
	OpSetLocal:     1, // local slot
	OpGetGlobal:    1, // name constant index
	OpDefineGlobal: 1, // name constant index
	OpSetGlobal:    1, // name constant index
	OpGetUpvalue:   1, // upvalue index
	OpSetUpvalue:   1, // upvalue index
	OpGetProperty:  1, // name constant index
	OpSetProperty:  1, // name constant index
	OpGetSuper:     1, // name constant index
	OpEqual:        0,
	OpGreater:      0,
	OpLess:         0,
	OpAdd:          0,
	OpSubtract:     0,
	OpMultiply:     0,
	OpDivide:       0,
	OpNot:          0,
	OpNegate:       0,
	OpPrint:        0,
	OpJump:         1, // forward offset
	OpJumpIfFalse:  1, // forward offset
	OpLoop:         1, // backward offset
	OpCall:         1, // number of arguments
	OpInvoke:       2, // name constant index, number of arguments
	OpSuperInvoke:  2, // name constant index, number of arguments
	OpClosure:      1, // function constant index, then capture pairs
	OpCloseUpvalue: 0,
	OpReturn:       0,
	OpClass:        1, // name constant index
	OpInherit:      0,
	OpMethod:       1, // name constant index
}

// Instruction is a single operation with its operands held inline.
type Instruction struct {
	Op       Opcode
	Operands []int
}

// Upvalue describes a captured variable. If IsLocal is true, Index is a
// local slot of the enclosing function, otherwise it is an index into the
// enclosing function's own upvalues.
type Upvalue struct {
	Index   int
	IsLocal bool
}

// MakeInstruction returns an instruction for an opcode and the operands.
func MakeInstruction(op Opcode, args ...int) (Instruction, error) {
	if int(op) >= NumOpcodes {
		return Instruction{}, fmt.Errorf("MakeInstruction: unknown Opcode %d", op)
	}
	want := OpcodeOperands[op]
	if op == OpClosure {
		if len(args) < want || (len(args)-want)%2 != 0 {
			return Instruction{}, fmt.Errorf(
				"MakeInstruction: %s expected %d operands and capture pairs, but got %d",
				OpcodeNames[op], want, len(args))
		}
	} else if len(args) != want {
		return Instruction{}, fmt.Errorf(
			"MakeInstruction: %s expected %d operands, but got %d",
			OpcodeNames[op], want, len(args))
	}
	ins := Instruction{Op: op}
	if len(args) > 0 {
		ins.Operands = append(make([]int, 0, len(args)), args...)
	}
	return ins, nil
}

// Operand returns the i'th operand or 0 if there is no such operand.
func (ins Instruction) Operand(i int) int {
	if i < len(ins.Operands) {
		return ins.Operands[i]
	}
	return 0
}

// Captures returns the upvalue descriptors trailing an OpClosure instruction.
func (ins Instruction) Captures() []Upvalue {
	if ins.Op != OpClosure || len(ins.Operands) < 3 {
		return nil
	}
	pairs := ins.Operands[1:]
	out := make([]Upvalue, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, Upvalue{IsLocal: pairs[i] == 1, Index: pairs[i+1]})
	}
	return out
}

// IsJump returns true if the instruction jumps forward by its operand.
func (ins Instruction) IsJump() bool {
	return ins.Op == OpJump || ins.Op == OpJumpIfFalse
}

func (ins Instruction) String() string {
	name := "UNKNOWN"
	if int(ins.Op) < len(OpcodeNames) {
		name = OpcodeNames[ins.Op]
	}
	if len(ins.Operands) == 0 {
		return name
	}
	return fmt.Sprint(name, " ", ins.Operands)
}
