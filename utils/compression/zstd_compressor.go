// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package compression shrinks peer messages with zstd.
package compression

import (
	"errors"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
)

var (
	ErrInvalidMaxSize = errors.New("invalid compressor max size")
	ErrTooLarge       = errors.New("message too large")
)

var _ Compressor = (*Zstd)(nil)

// Compressor compresses and decompresses messages.
// Decompress is the inverse of Compress.
type Compressor interface {
	Compress([]byte) ([]byte, error)
	Decompress([]byte) ([]byte, error)
}

// Zstd bounds both the input of Compress and the output of Decompress by the
// same size. It is safe for concurrent use.
type Zstd struct {
	maxSize int64
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewZstd(maxSize int64) (*Zstd, error) {
	// The decoder limit is checked against maxSize+1.
	if maxSize <= 0 || maxSize == math.MaxInt64 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxSize, maxSize)
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(maxSize)))
	if err != nil {
		return nil, err
	}
	return &Zstd{
		maxSize: maxSize,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func (z *Zstd) Compress(msg []byte) ([]byte, error) {
	if int64(len(msg)) > z.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(msg), z.maxSize)
	}
	return z.encoder.EncodeAll(msg, nil), nil
}

func (z *Zstd) Decompress(msg []byte) ([]byte, error) {
	decompressed, err := z.decoder.DecodeAll(msg, nil)
	switch {
	case errors.Is(err, zstd.ErrDecoderSizeExceeded):
		return nil, fmt.Errorf("%w: %w", ErrTooLarge, err)
	case err != nil:
		return nil, err
	case int64(len(decompressed)) > z.maxSize:
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, len(decompressed), z.maxSize)
	default:
		return decompressed, nil
	}
}
