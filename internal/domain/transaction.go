package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesChannel identifies how a sale was made. Marketplace-channel sales may
// shift collection duty to the platform once a jurisdiction's facilitator law
// takes effect.
type SalesChannel string

const (
	ChannelDirect      SalesChannel = "direct"
	ChannelMarketplace SalesChannel = "marketplace"
)

// Valid reports whether the channel is one of the known values.
func (c SalesChannel) Valid() bool {
	return c == ChannelDirect || c == ChannelMarketplace
}

// TransactionRecord is a single pre-validated, pre-normalized sale. The engine
// never mutates these; amounts are non-negative and dates are trusted as
// supplied by the upstream normalizer.
type TransactionRecord struct {
	ID           uuid.UUID       `json:"id" yaml:"id"`
	Date         time.Time       `json:"date" yaml:"date"`
	Jurisdiction string          `json:"jurisdiction" yaml:"jurisdiction"`
	Amount       decimal.Decimal `json:"amount" yaml:"amount"`
	Channel      SalesChannel    `json:"channel" yaml:"channel"`
}

// Year returns the calendar year the transaction falls in.
func (t TransactionRecord) Year() int {
	return t.Date.Year()
}
