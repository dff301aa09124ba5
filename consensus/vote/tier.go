// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vote

import (
	"github.com/luxfi/nano/block"

	safemath "github.com/luxfi/nano/utils/math"
)

// Tier ranks a representative by its share of the trended online weight.
// Higher tiers are verified first and are not rate limited.
type Tier uint8

const (
	TierNone Tier = iota
	Tier1         // at least 0.1%
	Tier2         // at least 1%
	Tier3         // at least 5%

	numTiers
)

func (t Tier) String() string {
	switch t {
	case Tier1:
		return "tier_1"
	case Tier2:
		return "tier_2"
	case Tier3:
		return "tier_3"
	default:
		return "none"
	}
}

// TierOf classifies [weight] against [total].
func TierOf(weight, total block.Amount) Tier {
	if weight.IsZero() {
		return TierNone
	}
	for _, t := range []struct {
		tier Tier
		num  uint64
		den  uint64
	}{
		{Tier3, 5, 100},
		{Tier2, 1, 100},
		{Tier1, 1, 1000},
	} {
		threshold := safemath.MulDivAmount(total, t.num, t.den)
		if !weight.Lt(&threshold) {
			return t.tier
		}
	}
	return TierNone
}
