// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package lox

import (
	"fmt"
	"strconv"

	"github.com/ozanh/lox/token"
)

// CompilerError represents a single compile diagnostic.
type CompilerError struct {
	Line int
	// Where is "end" for errors at the end of input, the quoted lexeme of the
	// offending token, or empty for errors reported by the scanner.
	Where   string
	Message string
}

func newCompilerError(tok token.Token, msg string) *CompilerError {
	e := &CompilerError{Line: tok.Line, Message: msg}
	switch tok.Kind {
	case token.EOF:
		e.Where = "end"
	case token.Error:
	default:
		e.Where = "'" + tok.Lexeme + "'"
	}
	return e
}

func (e *CompilerError) Error() string {
	if e.Where == "" {
		return "[line " + strconv.Itoa(e.Line) + "]: " + e.Message
	}
	return fmt.Sprintf("[line %d] at %s: %s", e.Line, e.Where, e.Message)
}

// ErrorList is a collection of compile errors in the order they are reported.
type ErrorList []*CompilerError

// Add adds a new error to the collection.
func (p *ErrorList) Add(e *CompilerError) {
	*p = append(*p, e)
}

// Len returns the number of elements in the collection.
func (p ErrorList) Len() int {
	return len(p)
}

func (p ErrorList) Error() string {
	switch len(p) {
	case 0:
		return "no errors"
	case 1:
		return p[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", p[0], len(p)-1)
}

// Err returns an error equivalent to this error list.
// If the list is empty, Err returns nil.
func (p ErrorList) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}
