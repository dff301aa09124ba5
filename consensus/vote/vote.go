// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vote defines representative votes and the queue that verifies
// them before they reach elections.
package vote

import (
	"crypto/ed25519"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
	"github.com/luxfi/constants"
	"github.com/luxfi/ids"

	"github.com/luxfi/nano/block"
)

const (
	CodecVersion = 0

	// FinalTimestamp marks a final vote: the representative will never vote
	// for a different block at the same root.
	FinalTimestamp = math.MaxUint64

	MaxHashes = 255

	maxVoteSize = 16 * constants.KiB
)

var (
	Codec codec.Manager

	hashPrefix = []byte("vote ")

	errNoHashes      = errors.New("vote has no hashes")
	errTooManyHashes = errors.New("vote has too many hashes")
)

func init() {
	Codec = codec.NewManager(maxVoteSize)
	if err := Codec.RegisterCodec(CodecVersion, linearcodec.NewDefault()); err != nil {
		panic(err)
	}
}

// Vote is a representative's signed endorsement of one block per root.
type Vote struct {
	Account   block.Account   `serialize:"true"`
	Timestamp uint64          `serialize:"true"`
	Hashes    []ids.ID        `serialize:"true"`
	Signature block.Signature `serialize:"true"`

	hash  ids.ID
	bytes []byte
}

// New signs a vote for [hashes] with [key].
func New(key ed25519.PrivateKey, timestamp uint64, hashes []ids.ID) (*Vote, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid ed25519 private key")
	}
	v := &Vote{
		Account:   block.AccountFromPublicKey(key.Public().(ed25519.PublicKey)),
		Timestamp: timestamp,
		Hashes:    hashes,
	}
	if err := v.verifyShape(); err != nil {
		return nil, err
	}
	v.hash = v.computeHash()
	v.Signature = block.Sign(key, v.hash)

	bytes, err := Codec.Marshal(CodecVersion, v)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal vote: %w", err)
	}
	v.bytes = bytes
	return v, nil
}

// Parse decodes a vote. The signature is not checked.
func Parse(bytes []byte) (*Vote, error) {
	v := &Vote{}
	if _, err := Codec.Unmarshal(bytes, v); err != nil {
		return nil, err
	}
	if err := v.verifyShape(); err != nil {
		return nil, err
	}
	v.hash = v.computeHash()
	v.bytes = bytes
	return v, nil
}

func (v *Vote) verifyShape() error {
	switch {
	case len(v.Hashes) == 0:
		return errNoHashes
	case len(v.Hashes) > MaxHashes:
		return errTooManyHashes
	default:
		return nil
	}
}

func (v *Vote) computeHash() ids.ID {
	parts := make([][]byte, 0, len(v.Hashes)+2)
	parts = append(parts, hashPrefix)
	for i := range v.Hashes {
		parts = append(parts, v.Hashes[i][:])
	}
	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], v.Timestamp)
	return block.Hash(append(parts, ts[:])...)
}

// Hash is the signed digest. It identifies the vote's content regardless of
// who relayed it.
func (v *Vote) Hash() ids.ID {
	return v.hash
}

func (v *Vote) Bytes() []byte {
	return v.bytes
}

func (v *Vote) IsFinal() bool {
	return v.Timestamp == FinalTimestamp
}

// Verify checks the signature against the voting account.
func (v *Vote) Verify() bool {
	return block.Verify(v.Account, v.hash, v.Signature)
}
