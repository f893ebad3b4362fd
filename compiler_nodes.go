// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package lox

import (
	"github.com/ozanh/lox/token"
)

func (c *Compiler) declaration() {
	switch {
	case c.match(token.Class):
		c.classDeclaration()
	case c.match(token.Fun):
		c.funDeclaration()
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.Print):
		c.printStatement()
	case c.match(token.If):
		c.ifStatement()
	case c.match(token.Return):
		c.returnStatement()
	case c.match(token.While):
		c.whileStatement()
	case c.match(token.For):
		c.forStatement()
	case c.match(token.LeftBrace):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) block() {
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RightBrace, "Expect '}' after block.")
}

func (c *Compiler) classDeclaration() {
	c.consume(token.Identifier, "Expect class name.")
	className := c.previous
	nameConstant := c.identifierConstant(className)
	c.declareVariable()

	c.emit(OpClass, nameConstant)
	c.defineVariable(nameConstant)

	class := &classContext{enclosing: c.class}
	c.class = class
	defer func() {
		c.class = class.enclosing
	}()

	if c.match(token.Less) {
		c.consume(token.Identifier, "Expect superclass name.")
		c.namedVariable(c.previous, false)
		if className.Lexeme == c.previous.Lexeme {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal(token.NewSynthetic("super", c.previous.Line))
		c.defineVariable(0)

		c.namedVariable(className, false)
		c.emit(OpInherit)
		class.hasSuperclass = true
	}

	// the class is on the stack while its methods are bound
	c.namedVariable(className, false)
	c.consume(token.LeftBrace, "Expect '{' before class body.")
	for !c.check(token.RightBrace) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RightBrace, "Expect '}' after class body.")
	c.emit(OpPop)

	if class.hasSuperclass {
		c.endScope()
	}
}

func (c *Compiler) method() {
	c.consume(token.Identifier, "Expect method name.")
	name := c.identifierConstant(c.previous)
	kind := KindMethod
	if c.previous.Lexeme == "init" {
		kind = KindInitializer
	}
	c.function(kind)
	c.emit(OpMethod, name)
}

func (c *Compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	// a function may refer to itself
	c.markInitialized()
	c.function(KindFunction)
	c.defineVariable(global)
}

// function compiles a parameter list and body in a new frame and emits the
// closure into the enclosing frame.
func (c *Compiler) function(kind FunctionKind) {
	c.beginFrame(kind)
	c.beginScope()

	c.consume(token.LeftParen, "Expect '(' after function name.")
	if !c.check(token.RightParen) {
		for {
			fn := c.frame().fn
			fn.Arity++
			if fn.Arity > maxArgs {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			constant := c.parseVariable("Expect parameter name.")
			c.defineVariable(constant)
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after parameters.")
	c.consume(token.LeftBrace, "Expect '{' before function body.")
	c.block()

	fn, upvalues := c.endFrame()
	operands := make([]int, 0, 1+2*len(upvalues))
	operands = append(operands, c.makeConstant(fn))
	for _, up := range upvalues {
		isLocal := 0
		if up.IsLocal {
			isLocal = 1
		}
		operands = append(operands, isLocal, up.Index)
	}
	c.emit(OpClosure, operands...)
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.Equal) {
		c.expression()
	} else {
		c.emit(OpNil)
	}
	c.consume(token.Semicolon, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after expression.")
	c.emit(OpPop)
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after value.")
	c.emit(OpPrint)
}

func (c *Compiler) ifStatement() {
	c.consume(token.LeftParen, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	thenJump := c.emitJump(OpJumpIfFalse)
	c.emit(OpPop)
	c.statement()

	elseJump := c.emitJump(OpJump)
	c.patchJump(thenJump)
	c.emit(OpPop)

	if c.match(token.Else) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *Compiler) whileStatement() {
	loopStart := c.chunk().Len()
	c.consume(token.LeftParen, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RightParen, "Expect ')' after condition.")

	exitJump := c.emitJump(OpJumpIfFalse)
	c.emit(OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emit(OpPop)
}

// forStatement compiles the increment clause before the body; the body
// loops back to the increment which loops back to the condition.
func (c *Compiler) forStatement() {
	c.beginScope()
	c.consume(token.LeftParen, "Expect '(' after 'for'.")
	switch {
	case c.match(token.Semicolon):
	case c.match(token.Var):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := c.chunk().Len()
	exitJump := -1
	if !c.match(token.Semicolon) {
		c.expression()
		c.consume(token.Semicolon, "Expect ';' after loop condition.")
		exitJump = c.emitJump(OpJumpIfFalse)
		c.emit(OpPop)
	}

	if !c.match(token.RightParen) {
		bodyJump := c.emitJump(OpJump)
		incrementStart := c.chunk().Len()
		c.expression()
		c.emit(OpPop)
		c.consume(token.RightParen, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emit(OpPop)
	}
	c.endScope()
}

func (c *Compiler) returnStatement() {
	kind := c.frame().kind
	if kind == KindScript {
		c.error("Can't return from top-level code.")
	}
	if c.match(token.Semicolon) {
		c.emitReturn()
		return
	}
	if kind == KindInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.Semicolon, "Expect ';' after return value.")
	c.emit(OpReturn)
}
