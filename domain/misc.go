package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type SortDir int8

const (
	SortDirAsc  = 1
	SortDirDesc = -1
)

type ChainId int32

type Address string

const EmptyAddress = Address("0x0000000000000000000000000000000000000000")

func (a Address) ToLower() Address {
	return Address(strings.ToLower(string(a)))
}

func (a Address) ToLowerStr() string {
	return strings.ToLower(string(a))
}

func (a Address) IsEmpty() bool {
	return len(a) == 0 || a.ToLower() == EmptyAddress
}

func (a Address) Equals(b Address) bool {
	return a.ToLowerStr() == b.ToLowerStr()
}

// TokenId identifies one asset class on the custody ledger. Ids are minted
// sequentially from 0, so they stay representable as decimal strings.
type TokenId string

func (i TokenId) String() string {
	return string(i)
}

func TokenIdFromInt(id int64) TokenId {
	return TokenId(strconv.FormatInt(id, 10))
}

// ListingId and AuctionId are independent sequential counters, each starting
// at 0 and incremented by exactly 1 per successful creation.
type ListingId int64

type AuctionId int64

// Amount is a non-negative payment amount kept in its decimal string form.
// Arithmetic goes through Decimal so amounts survive bson/json round trips
// without float drift.
type Amount string

const AmountZero = Amount("0")

func (a Amount) String() string {
	return string(a)
}

func (a Amount) Decimal() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(string(a))
	if err != nil {
		return decimal.Zero, ErrInvalidNumberFormat
	}
	return d, nil
}

// IsPositive reports whether the amount parses and is > 0.
func (a Amount) IsPositive() bool {
	d, err := a.Decimal()
	return err == nil && d.IsPositive()
}

func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount(d.String())
}
