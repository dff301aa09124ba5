// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

// Result is the outcome of validating a block against the ledger. Every
// value other than Progress rejects the block.
type Result uint8

const (
	Progress Result = iota
	BadSignature
	Old
	NegativeSpend
	Fork
	Unreceivable
	GapPrevious
	GapSource
	OpenedBurnAccount
	BalanceMismatch
	BlockPosition
	InsufficientWork
	BadAccountNumber
	RepresentativeMismatch
)

var resultNames = [...]string{
	Progress:               "progress",
	BadSignature:           "bad_signature",
	Old:                    "old",
	NegativeSpend:          "negative_spend",
	Fork:                   "fork",
	Unreceivable:           "unreceivable",
	GapPrevious:            "gap_previous",
	GapSource:              "gap_source",
	OpenedBurnAccount:      "opened_burn_account",
	BalanceMismatch:        "balance_mismatch",
	BlockPosition:          "block_position",
	InsufficientWork:       "insufficient_work",
	BadAccountNumber:       "bad_account_number",
	RepresentativeMismatch: "representative_mismatch",
}

func (r Result) String() string {
	if int(r) < len(resultNames) {
		return resultNames[r]
	}
	return "unknown"
}

// IsGap reports whether the block may become valid once a missing
// dependency arrives.
func (r Result) IsGap() bool {
	return r == GapPrevious || r == GapSource
}
