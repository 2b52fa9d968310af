package ws

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// TapeEvent is a last-trade print from the market channel.
type TapeEvent struct {
	TokenID   string
	Side      string
	Price     decimal.Decimal
	Size      decimal.Decimal
	Timestamp time.Time
}

func (e TapeEvent) NotionalUSD() decimal.Decimal {
	return e.Price.Mul(e.Size)
}

type rawEvent struct {
	EventType string `json:"event_type"`
	AssetID   string `json:"asset_id"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Timestamp string `json:"timestamp"`
}

// ParseTape extracts last-trade events from a market channel frame. Frames
// may carry a single event or an array; anything unparsable is skipped.
func ParseTape(msg json.RawMessage) []TapeEvent {
	var raws []rawEvent
	if err := json.Unmarshal(msg, &raws); err != nil {
		var single rawEvent
		if err := json.Unmarshal(msg, &single); err != nil {
			return nil
		}
		raws = []rawEvent{single}
	}
	events := make([]TapeEvent, 0, len(raws))
	for _, raw := range raws {
		if raw.EventType != "last_trade_price" || raw.AssetID == "" {
			continue
		}
		price, err := decimal.NewFromString(raw.Price)
		if err != nil {
			continue
		}
		size, err := decimal.NewFromString(raw.Size)
		if err != nil {
			continue
		}
		events = append(events, TapeEvent{
			TokenID:   raw.AssetID,
			Side:      raw.Side,
			Price:     price,
			Size:      size,
			Timestamp: parseMillis(raw.Timestamp),
		})
	}
	return events
}

func parseMillis(s string) time.Time {
	var ms int64
	for _, r := range s {
		if r < '0' || r > '9' {
			return time.Time{}
		}
		ms = ms*10 + int64(r-'0')
	}
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
