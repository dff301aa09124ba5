// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"errors"

	"github.com/luxfi/codec"
	"github.com/luxfi/codec/linearcodec"
	"github.com/luxfi/constants"
)

const (
	CodecVersion = 0

	maxBlockSize = 4 * constants.KiB
)

// Codec serializes blocks. Type IDs follow registration order and are part of
// the wire format.
var Codec codec.Manager

func init() {
	Codec = codec.NewManager(maxBlockSize)
	lc := linearcodec.NewDefault()

	err := errors.Join(
		lc.RegisterType(&SendBlock{}),
		lc.RegisterType(&ReceiveBlock{}),
		lc.RegisterType(&OpenBlock{}),
		lc.RegisterType(&ChangeBlock{}),
		lc.RegisterType(&StateBlock{}),
		Codec.RegisterCodec(CodecVersion, lc),
	)
	if err != nil {
		panic(err)
	}
}
