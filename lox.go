// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package lox compiles Lox source code into bytecode for a stack based
// virtual machine. Compilation is done in a single pass, the parser emits
// instructions as it recognizes expressions and statements and there is no
// syntax tree. The result is a script Function whose constant pool holds the
// nested functions of the program.
//
//	fn, err := lox.Compile(src, lox.DefaultCompilerOptions)
//	if err != nil {
//		// err is an ErrorList, fn must not be run
//	}
//	fn.Fprint(os.Stdout)
package lox
