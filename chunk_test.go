package lox_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	. "github.com/ozanh/lox"
)

func TestMakeInstruction(t *testing.T) {
	ins, err := MakeInstruction(OpPop)
	require.NoError(t, err)
	require.Nil(t, ins.Operands)
	require.Equal(t, "POP", ins.String())

	ins, err = MakeInstruction(OpInvoke, 3, 2)
	require.NoError(t, err)
	require.Equal(t, 3, ins.Operand(0))
	require.Equal(t, 2, ins.Operand(1))
	require.Equal(t, 0, ins.Operand(2))
	require.Equal(t, "INVOKE [3 2]", ins.String())

	_, err = MakeInstruction(OpConstant)
	require.Error(t, err)
	_, err = MakeInstruction(OpPop, 1)
	require.Error(t, err)
	_, err = MakeInstruction(Opcode(NumOpcodes))
	require.Error(t, err)

	ins, err = MakeInstruction(OpClosure, 4)
	require.NoError(t, err)
	require.Nil(t, ins.Captures())
	ins, err = MakeInstruction(OpClosure, 4, 1, 2, 0, 0)
	require.NoError(t, err)
	require.Equal(t, []Upvalue{
		{Index: 2, IsLocal: true},
		{Index: 0, IsLocal: false},
	}, ins.Captures())
	_, err = MakeInstruction(OpClosure, 4, 1)
	require.Error(t, err)
	_, err = MakeInstruction(OpClosure)
	require.Error(t, err)

	require.True(t, makeInst(OpJump, 1).IsJump())
	require.True(t, makeInst(OpJumpIfFalse, 1).IsJump())
	require.False(t, makeInst(OpLoop, 1).IsJump())

	for op := 0; op < NumOpcodes; op++ {
		require.NotEmpty(t, OpcodeNames[op])
	}
}

func TestChunk(t *testing.T) {
	var c Chunk
	require.Equal(t, 0, c.AddConstant(Number(1)))
	require.Equal(t, 1, c.AddConstant(Number(1)))
	require.Equal(t, 0, c.Write(makeInst(OpConstant, 0), 1))
	require.Equal(t, 1, c.Write(makeInst(OpJumpIfFalse, 1), 1))
	require.Equal(t, 2, c.Write(makeInst(OpPop), 2))
	require.Equal(t, 3, c.Write(makeInst(OpLoop, 4), 2))
	require.Equal(t, 4, c.Len())
	require.Equal(t, []int{1, 1, 2, 2}, c.Lines)

	target, ok := c.JumpTarget(1)
	require.True(t, ok)
	require.Equal(t, 3, target)
	target, ok = c.JumpTarget(3)
	require.True(t, ok)
	require.Equal(t, 0, target)
	_, ok = c.JumpTarget(0)
	require.False(t, ok)

	var seen []int
	c.IterateInstructions(func(pos int, ins Instruction) bool {
		seen = append(seen, pos)
		return ins.Op != OpPop
	})
	require.Equal(t, []int{0, 1, 2}, seen)

	require.Equal(t, "0000    1 CONSTANT            0 '1'", c.FormatInstruction(0))
	require.Equal(t, "0001    | JUMPIFFALSE         1 -> 3", c.FormatInstruction(1))
	require.Equal(t, "0002    2 POP", c.FormatInstruction(2))
	require.Equal(t, "0003    | LOOP                4 -> 0", c.FormatInstruction(3))

	// operands of plain opcodes are aligned with constant operands
	c.Write(makeInst(OpGetLocal, 1), 3)
	c.Write(makeInst(OpGetProperty, 0), 3)
	require.Equal(t, "0004    3 GETLOCAL            1", c.FormatInstruction(4))
	require.Equal(t, "0005    | GETPROPERTY         0 '1'", c.FormatInstruction(5))
}

func TestDisassemble(t *testing.T) {
	fn, err := Compile([]byte(`
var greeting = "hi";
fun show(a) {
  fun inner() { return a; }
  print greeting;
}
obj.m(1, 2);`), DefaultCompilerOptions)
	require.NoError(t, err)

	out := fn.Disassemble()
	lines := strings.Split(out, "\n")
	require.Equal(t, "Arity:0 Upvalues:0 Constants:8", lines[0])
	require.Equal(t, "== <script> ==", lines[1])
	require.Contains(t, out, "DEFINEGLOBAL        0 'greeting'")
	require.Contains(t, out, "CLOSURE             3 <fn show>")
	require.Contains(t, out, "INVOKE           (2 args)    5 'm'")

	// nested functions follow their parent
	show := strings.Index(out, "== <fn show> ==")
	inner := strings.Index(out, "== <fn inner> ==")
	require.Greater(t, show, 0)
	require.Greater(t, inner, show)
	require.Contains(t, out, "Arity:1 Upvalues:0 Constants:2")
	require.Contains(t, out, "                     local 1")
	require.Contains(t, out, "Arity:0 Upvalues:1 Constants:0")
	require.Contains(t, out, "GETUPVALUE          0")

	var buf bytes.Buffer
	fn.Fprint(&buf)
	require.Equal(t, out, buf.String())

	require.Equal(t, "<script>", fn.String())
	require.Equal(t, "function", fn.TypeName())
	require.Equal(t, "number", Number(1).TypeName())
	require.Equal(t, "0.5", Number(0.5).String())
	require.Equal(t, "1e+21", Number(1e21).String())
	require.Equal(t, "string", String("").TypeName())
}
