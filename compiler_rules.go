// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package lox

import (
	"strconv"

	"github.com/ozanh/lox/token"
)

// Precedence is the binding power of an operator, from loosest to tightest.
type Precedence int

// List of precedences
const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

var precedenceNames = [...]string{
	PrecNone:       "none",
	PrecAssignment: "assignment",
	PrecOr:         "or",
	PrecAnd:        "and",
	PrecEquality:   "equality",
	PrecComparison: "comparison",
	PrecTerm:       "term",
	PrecFactor:     "factor",
	PrecUnary:      "unary",
	PrecCall:       "call",
	PrecPrimary:    "primary",
}

func (p Precedence) String() string {
	if p >= 0 && int(p) < len(precedenceNames) {
		return precedenceNames[p]
	}
	return "precedence(" + strconv.Itoa(int(p)) + ")"
}

// Next returns the next tighter precedence. PrecPrimary is the last one.
func (p Precedence) Next() Precedence {
	if p >= PrecPrimary {
		return PrecPrimary
	}
	return p + 1
}

// parseFn names a prefix or infix parse behavior.
type parseFn uint8

const (
	fnNone parseFn = iota
	fnGrouping
	fnCall
	fnDot
	fnUnary
	fnBinary
	fnVariable
	fnString
	fnNumber
	fnLiteral
	fnAnd
	fnOr
	fnThis
	fnSuper
)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

var rules = [token.NumKinds]parseRule{
	token.LeftParen:    {fnGrouping, fnCall, PrecCall},
	token.Dot:          {fnNone, fnDot, PrecCall},
	token.Minus:        {fnUnary, fnBinary, PrecTerm},
	token.Plus:         {fnNone, fnBinary, PrecTerm},
	token.Slash:        {fnNone, fnBinary, PrecFactor},
	token.Star:         {fnNone, fnBinary, PrecFactor},
	token.Bang:         {fnUnary, fnNone, PrecNone},
	token.BangEqual:    {fnNone, fnBinary, PrecEquality},
	token.EqualEqual:   {fnNone, fnBinary, PrecEquality},
	token.Greater:      {fnNone, fnBinary, PrecComparison},
	token.GreaterEqual: {fnNone, fnBinary, PrecComparison},
	token.Less:         {fnNone, fnBinary, PrecComparison},
	token.LessEqual:    {fnNone, fnBinary, PrecComparison},
	token.Identifier:   {fnVariable, fnNone, PrecNone},
	token.String:       {fnString, fnNone, PrecNone},
	token.Number:       {fnNumber, fnNone, PrecNone},
	token.And:          {fnNone, fnAnd, PrecAnd},
	token.Or:           {fnNone, fnOr, PrecOr},
	token.False:        {fnLiteral, fnNone, PrecNone},
	token.Nil:          {fnLiteral, fnNone, PrecNone},
	token.True:         {fnLiteral, fnNone, PrecNone},
	token.This:         {fnThis, fnNone, PrecNone},
	token.Super:        {fnSuper, fnNone, PrecNone},
}

// ruleFor returns the parse rule of kind. Unknown kinds get the empty rule.
func ruleFor(kind token.Kind) parseRule {
	if kind < 0 || int(kind) >= len(rules) {
		return parseRule{}
	}
	return rules[kind]
}

func (c *Compiler) expression() {
	c.parsePrecedence(PrecAssignment)
}

func (c *Compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := ruleFor(c.previous.Kind).prefix
	if prefix == fnNone {
		c.error("Expect expression.")
		return
	}
	canAssign := prec <= PrecAssignment
	c.dispatch(prefix, canAssign)

	for prec <= ruleFor(c.current.Kind).precedence {
		c.advance()
		c.dispatch(ruleFor(c.previous.Kind).infix, canAssign)
	}

	if canAssign && c.match(token.Equal) {
		c.error("Invalid assignment target.")
	}
}

func (c *Compiler) dispatch(fn parseFn, canAssign bool) {
	switch fn {
	case fnGrouping:
		c.grouping()
	case fnCall:
		c.call()
	case fnDot:
		c.dot(canAssign)
	case fnUnary:
		c.unary()
	case fnBinary:
		c.binary()
	case fnVariable:
		c.namedVariable(c.previous, canAssign)
	case fnString:
		c.string()
	case fnNumber:
		c.number()
	case fnLiteral:
		c.literal()
	case fnAnd:
		c.and()
	case fnOr:
		c.or()
	case fnThis:
		c.this()
	case fnSuper:
		c.super()
	}
}

func (c *Compiler) grouping() {
	c.expression()
	c.consume(token.RightParen, "Expect ')' after expression.")
}

func (c *Compiler) call() {
	argc := c.argumentList()
	c.emit(OpCall, argc)
}

func (c *Compiler) argumentList() int {
	var argc int
	if !c.check(token.RightParen) {
		for {
			c.expression()
			if argc == maxArgs {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(token.Comma) {
				break
			}
		}
	}
	c.consume(token.RightParen, "Expect ')' after arguments.")
	return argc
}

func (c *Compiler) dot(canAssign bool) {
	c.consume(token.Identifier, "Expect property name after '.'.")
	name := c.identifierConstant(c.previous)

	switch {
	case canAssign && c.match(token.Equal):
		c.expression()
		c.emit(OpSetProperty, name)
	case c.match(token.LeftParen):
		argc := c.argumentList()
		c.emit(OpInvoke, name, argc)
	default:
		c.emit(OpGetProperty, name)
	}
}

func (c *Compiler) unary() {
	op := c.previous.Kind
	c.parsePrecedence(PrecUnary)
	switch op {
	case token.Bang:
		c.emit(OpNot)
	case token.Minus:
		c.emit(OpNegate)
	}
}

func (c *Compiler) binary() {
	op := c.previous.Kind
	c.parsePrecedence(ruleFor(op).precedence.Next())

	switch op {
	case token.BangEqual:
		c.emit(OpEqual)
		c.emit(OpNot)
	case token.EqualEqual:
		c.emit(OpEqual)
	case token.Greater:
		c.emit(OpGreater)
	case token.GreaterEqual:
		c.emit(OpLess)
		c.emit(OpNot)
	case token.Less:
		c.emit(OpLess)
	case token.LessEqual:
		c.emit(OpGreater)
		c.emit(OpNot)
	case token.Plus:
		c.emit(OpAdd)
	case token.Minus:
		c.emit(OpSubtract)
	case token.Star:
		c.emit(OpMultiply)
	case token.Slash:
		c.emit(OpDivide)
	}
}

func (c *Compiler) string() {
	lex := c.previous.Lexeme
	c.emitConstant(String(lex[1 : len(lex)-1]))
}

func (c *Compiler) number() {
	v, err := strconv.ParseFloat(c.previous.Lexeme, 64)
	if err != nil {
		c.error("Invalid number literal.")
		return
	}
	c.emitConstant(Number(v))
}

func (c *Compiler) literal() {
	switch c.previous.Kind {
	case token.False:
		c.emit(OpFalse)
	case token.True:
		c.emit(OpTrue)
	case token.Nil:
		c.emit(OpNil)
	}
}

// and leaves the falsy left operand on the stack or evaluates the right one.
func (c *Compiler) and() {
	endJump := c.emitJump(OpJumpIfFalse)
	c.emit(OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

// or leaves the truthy left operand on the stack or evaluates the right one.
func (c *Compiler) or() {
	elseJump := c.emitJump(OpJumpIfFalse)
	endJump := c.emitJump(OpJump)
	c.patchJump(elseJump)
	c.emit(OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func (c *Compiler) this() {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.namedVariable(c.previous, false)
}

func (c *Compiler) super() {
	if c.class == nil {
		c.error("Can't use 'super' outside of a class.")
	} else if !c.class.hasSuperclass {
		c.error("Can't use 'super' in a class with no superclass.")
	}
	c.consume(token.Dot, "Expect '.' after 'super'.")
	c.consume(token.Identifier, "Expect superclass method name.")
	name := c.identifierConstant(c.previous)
	line := c.previous.Line

	c.namedVariable(token.NewSynthetic("this", line), false)
	if c.match(token.LeftParen) {
		argc := c.argumentList()
		c.namedVariable(token.NewSynthetic("super", line), false)
		c.emit(OpSuperInvoke, name, argc)
		return
	}
	c.namedVariable(token.NewSynthetic("super", line), false)
	c.emit(OpGetSuper, name)
}
