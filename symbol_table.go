// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package lox

import (
	"github.com/ozanh/lox/token"
)

// Local is a variable living in a stack slot of its function.
type Local struct {
	Name token.Token
	// Depth is the scope depth the local is declared in.
	Depth int
	// Initialized is false while the initializer of the local is compiled,
	// the local cannot be referenced by name until it is set.
	Initialized bool
	// Captured is true if a closure refers to the local.
	Captured bool
}

func (c *Compiler) beginScope() {
	c.frame().scopeDepth++
}

// endScope leaves a block and discards its locals, closing captured ones.
func (c *Compiler) endScope() {
	f := c.frame()
	f.scopeDepth--
	for len(f.locals) > 0 && f.locals[len(f.locals)-1].Depth > f.scopeDepth {
		if f.locals[len(f.locals)-1].Captured {
			c.emit(OpCloseUpvalue)
		} else {
			c.emit(OpPop)
		}
		f.locals = f.locals[:len(f.locals)-1]
	}
}

func (c *Compiler) addLocal(name token.Token) {
	f := c.frame()
	if len(f.locals) >= maxLocals {
		c.error("Too many local variables in function.")
		return
	}
	f.locals = append(f.locals, Local{Name: name, Depth: f.scopeDepth})
}

// declareVariable adds the previous token as a local of the current scope.
// Globals are late bound and not declared.
func (c *Compiler) declareVariable() {
	f := c.frame()
	if f.scopeDepth == 0 {
		return
	}
	name := c.previous
	for i := len(f.locals) - 1; i >= 0; i-- {
		local := &f.locals[i]
		if local.Depth < f.scopeDepth {
			break
		}
		if local.Name.Lexeme == name.Lexeme {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

// parseVariable consumes a variable name and returns the index of its name
// constant for globals, or 0 for locals.
func (c *Compiler) parseVariable(msg string) int {
	c.consume(token.Identifier, msg)
	c.declareVariable()
	if c.frame().scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.previous)
}

func (c *Compiler) markInitialized() {
	f := c.frame()
	if f.scopeDepth == 0 {
		return
	}
	local := &f.locals[len(f.locals)-1]
	local.Depth = f.scopeDepth
	local.Initialized = true
}

func (c *Compiler) defineVariable(global int) {
	if c.frame().scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emit(OpDefineGlobal, global)
}

// resolveLocal returns the slot of the innermost local named name in the
// frame at fi, or -1.
func (c *Compiler) resolveLocal(fi int, name token.Token) int {
	f := c.frames[fi]
	for i := len(f.locals) - 1; i >= 0; i-- {
		local := &f.locals[i]
		if local.Name.Lexeme != name.Lexeme {
			continue
		}
		if !local.Initialized {
			c.error("Can't read local variable in its own initializer.")
		}
		return i
	}
	return -1
}

// addUpvalue registers a capture in the frame at fi and returns its index.
// Captures are unique by (index, isLocal).
func (c *Compiler) addUpvalue(fi int, index int, isLocal bool) int {
	f := c.frames[fi]
	for i, up := range f.upvalues {
		if up.Index == index && up.IsLocal == isLocal {
			return i
		}
	}
	if len(f.upvalues) >= maxUpvalues {
		c.error("Too many closure variables in function.")
		return 0
	}
	f.upvalues = append(f.upvalues, Upvalue{Index: index, IsLocal: isLocal})
	f.fn.UpvalueCount = len(f.upvalues)
	return len(f.upvalues) - 1
}

// resolveUpvalue resolves name as a variable of an enclosing frame and
// threads the capture through every frame in between. It returns the
// upvalue index in the frame at fi, or -1.
func (c *Compiler) resolveUpvalue(fi int, name token.Token) int {
	enclosing := c.frames[fi].enclosing
	if enclosing < 0 {
		return -1
	}
	if local := c.resolveLocal(enclosing, name); local != -1 {
		c.frames[enclosing].locals[local].Captured = true
		return c.addUpvalue(fi, local, true)
	}
	if up := c.resolveUpvalue(enclosing, name); up != -1 {
		return c.addUpvalue(fi, up, false)
	}
	return -1
}

// namedVariable emits a get or, if allowed and an '=' follows, a set of the
// variable called name. Locals win over upvalues, upvalues over globals.
func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var getOp, setOp Opcode
	fi := len(c.frames) - 1
	arg := c.resolveLocal(fi, name)
	if arg != -1 {
		getOp, setOp = OpGetLocal, OpSetLocal
	} else if arg = c.resolveUpvalue(fi, name); arg != -1 {
		getOp, setOp = OpGetUpvalue, OpSetUpvalue
	} else {
		arg = c.identifierConstant(name)
		getOp, setOp = OpGetGlobal, OpSetGlobal
	}

	if canAssign && c.match(token.Equal) {
		c.expression()
		c.emit(setOp, arg)
		return
	}
	c.emit(getOp, arg)
}
