// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"crypto/ed25519"
	"encoding/base32"
	"errors"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/luxfi/ids"
)

const (
	AccountLen = ed25519.PublicKeySize

	accountPrefix       = "nano_"
	legacyAccountPrefix = "xrb_"
	accountAlphabet     = "13456789abcdefghijkmnopqrstuwxyz"
	accountKeyChars     = 52
	accountChecksumLen  = 5
	accountChars        = accountKeyChars + 8
	accountPadBytes     = 3
)

var (
	// ZeroAccount is the reserved burn account.
	ZeroAccount Account

	accountEncoding = base32.NewEncoding(accountAlphabet).WithPadding(base32.NoPadding)

	errAccountPrefix   = errors.New("account has an unknown prefix")
	errAccountLength   = errors.New("account has the wrong length")
	errAccountEncoding = errors.New("account is not correctly encoded")
	errAccountChecksum = errors.New("account checksum mismatch")
)

// Account is the ed25519 public key that owns a chain of blocks.
type Account [AccountLen]byte

// AccountFromPublicKey converts an ed25519 public key into an account.
func AccountFromPublicKey(pk ed25519.PublicKey) Account {
	var a Account
	copy(a[:], pk)
	return a
}

// AccountFromString parses the nano_ (or legacy xrb_) text form.
func AccountFromString(s string) (Account, error) {
	var body string
	switch {
	case strings.HasPrefix(s, accountPrefix):
		body = s[len(accountPrefix):]
	case strings.HasPrefix(s, legacyAccountPrefix):
		body = s[len(legacyAccountPrefix):]
	default:
		return Account{}, errAccountPrefix
	}
	if len(body) != accountChars {
		return Account{}, errAccountLength
	}

	// The key is 260 bits: four zero bits followed by the 256 bit key. Padding
	// with 20 more zero bits gives a whole number of bytes.
	decoded, err := accountEncoding.DecodeString("1111" + body[:accountKeyChars])
	if err != nil {
		return Account{}, errAccountEncoding
	}
	for _, b := range decoded[:accountPadBytes] {
		if b != 0 {
			return Account{}, errAccountEncoding
		}
	}

	var a Account
	copy(a[:], decoded[accountPadBytes:])

	checksum, err := accountEncoding.DecodeString(body[accountKeyChars:])
	if err != nil {
		return Account{}, errAccountEncoding
	}
	expected := a.checksum()
	if string(checksum) != string(expected[:]) {
		return Account{}, errAccountChecksum
	}
	return a, nil
}

func (a Account) checksum() [accountChecksumLen]byte {
	h, err := blake2b.New(accountChecksumLen, nil)
	if err != nil {
		panic(err)
	}
	_, _ = h.Write(a[:])
	sum := h.Sum(nil)

	var out [accountChecksumLen]byte
	for i := range out {
		out[i] = sum[accountChecksumLen-1-i]
	}
	return out
}

func (a Account) String() string {
	var padded [accountPadBytes + AccountLen]byte
	copy(padded[accountPadBytes:], a[:])
	encoded := accountEncoding.EncodeToString(padded[:])
	checksum := a.checksum()
	return accountPrefix + encoded[4:] + accountEncoding.EncodeToString(checksum[:])
}

func (a Account) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Account) UnmarshalText(text []byte) error {
	parsed, err := AccountFromString(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// IsZero reports whether this is the burn account.
func (a Account) IsZero() bool {
	return a == ZeroAccount
}

// ID reinterprets the account as a root or link value.
func (a Account) ID() ids.ID {
	return ids.ID(a)
}

// PublicKey returns the account as an ed25519 verification key.
func (a Account) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(a[:])
}

// AccountFromID reinterprets a link value as a destination account.
func AccountFromID(id ids.ID) Account {
	return Account(id)
}
