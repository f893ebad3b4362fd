// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package token

import "strconv"

// Kind represents the lexical category of a token.
type Kind int

// List of token kinds
const (
	// Single-character tokens.
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star
	// One or two character tokens.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual
	// Literals.
	Identifier
	String
	Number
	keywordBeg
	// Keywords.
	And
	Class
	Else
	False
	For
	Fun
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While
	keywordEnd
	Error
	EOF
	// Synthetic tokens are made by the compiler, never by the scanner.
	Synthetic
	numKinds
)

var kinds = [...]string{
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	Comma:        ",",
	Dot:          ".",
	Minus:        "-",
	Plus:         "+",
	Semicolon:    ";",
	Slash:        "/",
	Star:         "*",
	Bang:         "!",
	BangEqual:    "!=",
	Equal:        "=",
	EqualEqual:   "==",
	Greater:      ">",
	GreaterEqual: ">=",
	Less:         "<",
	LessEqual:    "<=",
	Identifier:   "IDENT",
	String:       "STRING",
	Number:       "NUMBER",
	And:          "and",
	Class:        "class",
	Else:         "else",
	False:        "false",
	For:          "for",
	Fun:          "fun",
	If:           "if",
	Nil:          "nil",
	Or:           "or",
	Print:        "print",
	Return:       "return",
	Super:        "super",
	This:         "this",
	True:         "true",
	Var:          "var",
	While:        "while",
	Error:        "ERROR",
	EOF:          "EOF",
	Synthetic:    "SYNTHETIC",
}

// NumKinds is the number of token kinds, useful to size lookup tables.
const NumKinds = int(numKinds)

func (k Kind) String() string {
	s := ""
	if 0 <= k && int(k) < len(kinds) {
		s = kinds[k]
	}
	if s == "" {
		s = "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return s
}

// IsKeyword returns true if the kind is a reserved word.
func (k Kind) IsKeyword() bool {
	return keywordBeg < k && k < keywordEnd
}

// Keywords returns the reserved words in declaration order.
func Keywords() []string {
	out := make([]string, 0, keywordEnd-keywordBeg-1)
	for k := keywordBeg + 1; k < keywordEnd; k++ {
		out = append(out, kinds[k])
	}
	return out
}

// Token is a lexical token. Tokens are values and never change once made.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}

// NewSynthetic returns a compiler made token for an implicit name such as
// "this" or "super".
func NewSynthetic(text string, line int) Token {
	return Token{Kind: Synthetic, Lexeme: text, Line: line}
}

func (t Token) String() string {
	switch t.Kind {
	case EOF:
		return "EOF"
	case Error:
		return "ERROR(" + t.Lexeme + ")"
	}
	return t.Lexeme
}
