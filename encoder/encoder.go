// Copyright (c) 2020-2023 Ozan Hacıbekiroğlu.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

// Package encoder serializes compiled scripts so they can be stored and
// loaded without compiling the source again. Encoding is canonical CBOR, the
// same function always encodes to the same bytes.
package encoder

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/ozanh/lox"
)

// Magic and Version are written to the header of an encoded script.
const (
	Magic   = "LOXC"
	Version = 1
)

// ErrInvalidData is wrapped by all errors caused by malformed input.
var ErrInvalidData = errors.New("invalid data")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("encoder: failed to create CBOR enc mode: %v", err))
	}
	// each nested function adds three levels
	decMode, err = cbor.DecOptions{MaxNestedLevels: 1024}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("encoder: failed to create CBOR dec mode: %v", err))
	}
}

// Marshal encodes the script function and all nested functions.
func Marshal(fn *lox.Function) ([]byte, error) {
	if fn == nil {
		return nil, errors.New("encoder: nil function")
	}
	main, err := fromFunction(fn)
	if err != nil {
		return nil, err
	}
	return encMode.Marshal(&fileV1{
		Magic:   Magic,
		Version: Version,
		Main:    main,
	})
}

// Unmarshal decodes data created by Marshal and validates every function.
func Unmarshal(data []byte) (*lox.Function, error) {
	var f fileV1
	if err := decMode.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("encoder: %w: %v", ErrInvalidData, err)
	}
	return f.toFunction()
}

// Encode writes encoded fn to w.
func Encode(w io.Writer, fn *lox.Function) error {
	data, err := Marshal(fn)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Decode reads a single encoded script from r.
func Decode(r io.Reader) (*lox.Function, error) {
	var f fileV1
	if err := decMode.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("encoder: %w: empty input", ErrInvalidData)
		}
		return nil, fmt.Errorf("encoder: %w: %v", ErrInvalidData, err)
	}
	return f.toFunction()
}
