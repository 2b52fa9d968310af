package clob

import (
	"github.com/shopspring/decimal"
)

// OrderArgs is the caller-facing request for a signed limit order.
type OrderArgs struct {
	TokenID string
	Side    string // "BUY" or "SELL"
	Price   decimal.Decimal
	Size    int64 // shares
	NegRisk bool
}

// OrderWire is the EIP-712 order struct as posted to /order.
type OrderWire struct {
	Salt          string `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          string `json:"side"`
	SignatureType int    `json:"signatureType"`
	Signature     string `json:"signature"`
}

type postOrderRequest struct {
	Order     OrderWire `json:"order"`
	Owner     string    `json:"owner"`
	OrderType string    `json:"orderType"`
}

// PostResult is the normalized exchange response to an order submission.
// Status is the exchange's word: "live" for resting orders, "matched" for
// immediate fills.
type PostResult struct {
	OrderID string
	Status  string
}

type BookLevel struct {
	Price decimal.Decimal
	Size  decimal.Decimal
}

type Book struct {
	TokenID string
	Bids    []BookLevel
	Asks    []BookLevel
}

// BestPrices summarizes the touch. A spread under 10¢ counts as liquid.
type BestPrices struct {
	BestBid decimal.Decimal
	BestAsk decimal.Decimal
	Spread  decimal.Decimal
	Liquid  bool
}

// Balance is the exchange's advisory collateral view.
type Balance struct {
	BalanceUSD   decimal.Decimal
	AllowanceUSD decimal.Decimal
}

type OpenOrder struct {
	ID           string
	TokenID      string
	Side         string
	Price        decimal.Decimal
	OriginalSize decimal.Decimal
	SizeMatched  decimal.Decimal
}
