// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package scanner converts lox source text into tokens on demand.
package scanner

import (
	"github.com/ozanh/lox/token"
)

// Scanner produces tokens from source. The zero value is not usable, use New.
type Scanner struct {
	src     string
	start   int // offset of the token being scanned
	current int // offset of the next unread byte
	line    int
}

// New returns a Scanner reading src from line 1.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1}
}

// Line returns the current line of the cursor.
func (s *Scanner) Line() int {
	return s.line
}

// Next returns the next token. Once the source is exhausted every call
// returns an EOF token. Lexical errors are returned as token.Error tokens
// whose lexeme is the message.
func (s *Scanner) Next() token.Token {
	s.skipWhitespace()
	s.start = s.current
	if s.isAtEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	if isAlpha(c) {
		return s.identifier()
	}
	if isDigit(c) {
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LeftParen)
	case ')':
		return s.make(token.RightParen)
	case '{':
		return s.make(token.LeftBrace)
	case '}':
		return s.make(token.RightBrace)
	case ';':
		return s.make(token.Semicolon)
	case ',':
		return s.make(token.Comma)
	case '.':
		return s.make(token.Dot)
	case '-':
		return s.make(token.Minus)
	case '+':
		return s.make(token.Plus)
	case '/':
		return s.make(token.Slash)
	case '*':
		return s.make(token.Star)
	case '!':
		return s.make(s.pick('=', token.BangEqual, token.Bang))
	case '=':
		return s.make(s.pick('=', token.EqualEqual, token.Equal))
	case '<':
		return s.make(s.pick('=', token.LessEqual, token.Less))
	case '>':
		return s.make(s.pick('=', token.GreaterEqual, token.Greater))
	case '"':
		return s.string()
	}
	return s.errorToken("Unexpected character.")
}

func (s *Scanner) isAtEnd() bool {
	return s.current >= len(s.src)
}

func (s *Scanner) advance() byte {
	s.current++
	return s.src[s.current-1]
}

func (s *Scanner) peek() byte {
	if s.isAtEnd() {
		return 0
	}
	return s.src[s.current]
}

func (s *Scanner) peekNext() byte {
	if s.current+1 >= len(s.src) {
		return 0
	}
	return s.src[s.current+1]
}

// pick consumes expected if it is the next byte and returns two, else one.
func (s *Scanner) pick(expected byte, two, one token.Kind) token.Kind {
	if s.isAtEnd() || s.src[s.current] != expected {
		return one
	}
	s.current++
	return two
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{
		Kind:   kind,
		Lexeme: s.src[s.start:s.current],
		Line:   s.line,
	}
}

func (s *Scanner) errorToken(msg string) token.Token {
	return token.Token{Kind: token.Error, Lexeme: msg, Line: s.line}
}

func (s *Scanner) skipWhitespace() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.advance()
		case '\n':
			s.line++
			s.advance()
		case '/':
			if s.peekNext() != '/' {
				return
			}
			// the newline ending a comment is left for the next iteration
			for s.peek() != '\n' && !s.isAtEnd() {
				s.advance()
			}
		default:
			return
		}
	}
}

func (s *Scanner) string() token.Token {
	for s.peek() != '"' && !s.isAtEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.isAtEnd() {
		return s.errorToken("Unterminated string.")
	}
	s.advance() // closing quote
	return s.make(token.String)
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	return s.make(token.Number)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.advance()
	}
	return s.make(s.identifierKind())
}

// identifierKind dispatches on the first, and for some words the second,
// byte of the lexeme before comparing the rest.
func (s *Scanner) identifierKind() token.Kind {
	lex := s.src[s.start:s.current]
	switch lex[0] {
	case 'a':
		return checkKeyword(lex, 1, "nd", token.And)
	case 'c':
		return checkKeyword(lex, 1, "lass", token.Class)
	case 'e':
		return checkKeyword(lex, 1, "lse", token.Else)
	case 'f':
		if len(lex) > 1 {
			switch lex[1] {
			case 'a':
				return checkKeyword(lex, 2, "lse", token.False)
			case 'o':
				return checkKeyword(lex, 2, "r", token.For)
			case 'u':
				return checkKeyword(lex, 2, "n", token.Fun)
			}
		}
	case 'i':
		return checkKeyword(lex, 1, "f", token.If)
	case 'n':
		return checkKeyword(lex, 1, "il", token.Nil)
	case 'o':
		return checkKeyword(lex, 1, "r", token.Or)
	case 'p':
		return checkKeyword(lex, 1, "rint", token.Print)
	case 'r':
		return checkKeyword(lex, 1, "eturn", token.Return)
	case 's':
		return checkKeyword(lex, 1, "uper", token.Super)
	case 't':
		if len(lex) > 1 {
			switch lex[1] {
			case 'h':
				return checkKeyword(lex, 2, "is", token.This)
			case 'r':
				return checkKeyword(lex, 2, "ue", token.True)
			}
		}
	case 'v':
		return checkKeyword(lex, 1, "ar", token.Var)
	case 'w':
		return checkKeyword(lex, 1, "hile", token.While)
	}
	return token.Identifier
}

func checkKeyword(lex string, start int, rest string, kind token.Kind) token.Kind {
	if len(lex) == start+len(rest) && lex[start:] == rest {
		return kind
	}
	return token.Identifier
}

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
