// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package lox

import (
	"strconv"
)

// Value is a literal stored in a constant pool. Numbers, strings and
// compiled functions are the only constants the compiler makes.
type Value interface {
	// TypeName should return the name of the type.
	TypeName() string
	// String should return a string representation of the value.
	String() string
}

var (
	_ Value = Number(0)
	_ Value = String("")
	_ Value = (*Function)(nil)
)

// Number represents a numeric literal.
type Number float64

// TypeName implements Value interface.
func (Number) TypeName() string {
	return "number"
}

func (o Number) String() string {
	return strconv.FormatFloat(float64(o), 'g', -1, 64)
}

// String represents a string literal or an identifier name.
type String string

// TypeName implements Value interface.
func (String) TypeName() string {
	return "string"
}

func (o String) String() string {
	return string(o)
}
