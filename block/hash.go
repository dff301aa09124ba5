// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"crypto/ed25519"

	"github.com/holiman/uint256"
	"golang.org/x/crypto/blake2b"

	"github.com/luxfi/ids"
)

// Amount is a raw 128-bit quantity. Only the low 128 bits are populated.
type Amount = uint256.Int

// Signature is an ed25519 signature over a block or vote hash.
type Signature [ed25519.SignatureSize]byte

// Hash returns the blake2b-256 digest of the concatenation of [parts].
func Hash(parts ...[]byte) ids.ID {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	var id ids.ID
	copy(id[:], h.Sum(nil))
	return id
}

// AmountBytes returns the 16 byte big endian form of [a].
func AmountBytes(a Amount) []byte {
	b := a.Bytes32()
	return b[16:]
}

// AmountFromBytes parses a 16 byte big endian amount.
func AmountFromBytes(b []byte) Amount {
	var a Amount
	a.SetBytes(b)
	return a
}

// Sign signs [hash] with [key].
func Sign(key ed25519.PrivateKey, hash ids.ID) Signature {
	var sig Signature
	copy(sig[:], ed25519.Sign(key, hash[:]))
	return sig
}

// Verify reports whether [sig] is [signer]'s signature of [hash].
func Verify(signer Account, hash ids.ID, sig Signature) bool {
	return ed25519.Verify(signer.PublicKey(), hash[:], sig[:])
}
