// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package network

import (
	"errors"
	"fmt"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
	"github.com/luxfi/constants"
	"github.com/luxfi/ids"

	"github.com/luxfi/nano/utils/compression"
)

const (
	CodecVersion = 0

	// MaxMessageSize bounds a message before and after compression.
	MaxMessageSize = 64 * constants.KiB

	// MaxConfirmReqPairs bounds the roots asked about in one request.
	MaxConfirmReqPairs = 255
)

var (
	Codec      codec.Manager
	compressor compression.Compressor

	errEmptyRequest = errors.New("confirmation request has no pairs")
)

func init() {
	Codec = codec.NewManager(MaxMessageSize)
	lc := linearcodec.NewDefault()

	err := errors.Join(
		lc.RegisterType(&Publish{}),
		lc.RegisterType(&ConfirmReq{}),
		lc.RegisterType(&ConfirmAck{}),
		Codec.RegisterCodec(CodecVersion, lc),
	)
	if err != nil {
		panic(err)
	}

	compressor, err = compression.NewZstd(MaxMessageSize)
	if err != nil {
		panic(err)
	}
}

// Message is a payload exchanged with peers.
type Message interface {
	Op() Op
}

type Op uint8

const (
	PublishOp Op = iota
	ConfirmReqOp
	ConfirmAckOp
)

func (o Op) String() string {
	switch o {
	case PublishOp:
		return "publish"
	case ConfirmReqOp:
		return "confirm_req"
	case ConfirmAckOp:
		return "confirm_ack"
	default:
		return "unknown"
	}
}

// Publish carries a serialized block.
type Publish struct {
	Block []byte `serialize:"true"`
}

func (*Publish) Op() Op { return PublishOp }

// RootHash names a candidate block and the root it competes for.
type RootHash struct {
	Root ids.ID `serialize:"true"`
	Hash ids.ID `serialize:"true"`
}

// ConfirmReq asks representatives to vote on the listed candidates.
type ConfirmReq struct {
	Pairs []RootHash `serialize:"true"`
}

func (*ConfirmReq) Op() Op { return ConfirmReqOp }

// ConfirmAck carries a serialized vote.
type ConfirmAck struct {
	Vote []byte `serialize:"true"`
}

func (*ConfirmAck) Op() Op { return ConfirmAckOp }

// Encode serializes and compresses [msg].
func Encode(msg Message) ([]byte, error) {
	bytes, err := Codec.Marshal(CodecVersion, &msg)
	if err != nil {
		return nil, fmt.Errorf("couldn't marshal %s: %w", msg.Op(), err)
	}
	return compressor.Compress(bytes)
}

// Decode is the inverse of Encode.
func Decode(bytes []byte) (Message, error) {
	decompressed, err := compressor.Decompress(bytes)
	if err != nil {
		return nil, err
	}
	var msg Message
	if _, err := Codec.Unmarshal(decompressed, &msg); err != nil {
		return nil, err
	}
	if req, ok := msg.(*ConfirmReq); ok && len(req.Pairs) == 0 {
		return nil, errEmptyRequest
	}
	return msg, nil
}
