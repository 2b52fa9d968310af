package rest

import (
	"time"

	"github.com/shopspring/decimal"
)

// Market is the Gamma view of a single binary market. OutcomePrices and
// ClobTokenIDs arrive as JSON-encoded strings inside the JSON payload and are
// decoded by the parse helpers.
type Market struct {
	ID           string
	Question     string
	Slug         string
	ConditionID  string
	NegRisk      bool
	Active       bool
	Closed       bool
	Volume24hUSD float64
	YesPrice     decimal.Decimal
	NoPrice      decimal.Decimal
	YesTokenID   string
	NoTokenID    string
}

// TokenID returns the CLOB token for an outcome ("yes"/"no").
func (m Market) TokenID(outcome string) string {
	if outcome == "no" {
		return m.NoTokenID
	}
	return m.YesTokenID
}

type Event struct {
	Title   string
	Slug    string
	Markets []Market
}

// Trade is one record from the public trade tape.
type Trade struct {
	Side        string
	Outcome     string
	Price       decimal.Decimal
	Size        decimal.Decimal
	Title       string
	Slug        string
	ConditionID string
	Wallet      string
	TraderName  string
	Timestamp   time.Time
}

// NotionalUSD is price*size.
func (t Trade) NotionalUSD() decimal.Decimal {
	return t.Price.Mul(t.Size)
}

// Profile is the leaderboard view of a trader.
type Profile struct {
	Address   string
	Name      string
	ProfitUSD float64
	VolumeUSD float64
	Positions int
}

// Position is an advisory, possibly-stale exchange view of a holding.
type Position struct {
	ConditionID string
	Title       string
	Outcome     string
	Size        decimal.Decimal
	AvgPrice    decimal.Decimal
	ValueUSD    float64
}
