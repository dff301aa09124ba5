// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package json provides JSON forms for numeric types that do not fit in a
// JSON number.
package json

import (
	"fmt"
	"strconv"

	"github.com/holiman/uint256"
)

const Null = "null"

func unquote(b []byte) (string, bool) {
	str := string(b)
	if str == Null {
		return "", false
	}
	if len(str) >= 2 {
		if lastIndex := len(str) - 1; str[0] == '"' && str[lastIndex] == '"' {
			str = str[1:lastIndex]
		}
	}
	return str, true
}

// Uint64 is a uint64 that can be JSON marshaled as a string.
type Uint64 uint64

func (u Uint64) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatUint(uint64(u), 10) + `"`), nil
}

func (u *Uint64) UnmarshalJSON(b []byte) error {
	str, ok := unquote(b)
	if !ok {
		return nil
	}
	val, err := strconv.ParseUint(str, 10, 64)
	*u = Uint64(val)
	return err
}

// Hex64 is a uint64 marshaled as a 16 digit hex string, the usual form of a
// work threshold.
type Hex64 uint64

func (h Hex64) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%016x"`, uint64(h))), nil
}

func (h *Hex64) UnmarshalJSON(b []byte) error {
	str, ok := unquote(b)
	if !ok {
		return nil
	}
	val, err := strconv.ParseUint(str, 16, 64)
	*h = Hex64(val)
	return err
}

// Amount is a raw ledger amount marshaled as a decimal string.
type Amount uint256.Int

func (a Amount) MarshalJSON() ([]byte, error) {
	v := uint256.Int(a)
	return []byte(`"` + v.Dec() + `"`), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	str, ok := unquote(b)
	if !ok {
		return nil
	}
	v, err := uint256.FromDecimal(str)
	if err != nil {
		return err
	}
	*a = Amount(*v)
	return nil
}

// Int returns the amount as a uint256.
func (a Amount) Int() uint256.Int {
	return uint256.Int(a)
}
