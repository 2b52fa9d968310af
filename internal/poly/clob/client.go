// Package clob talks to the Polymarket CLOB: signed order submission,
// cancels, orderbooks and the advisory balance view.
package clob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/exhuman777/claude-trader/internal/config"
)

type Client struct {
	baseURL string
	signer  *Signer
	creds   Creds
	http    *http.Client
	log     *zap.Logger
	now     func() time.Time
}

func NewClient(cfg config.ClobConfig, signer *Signer, creds Creds, log *zap.Logger) (*Client, error) {
	if signer == nil {
		return nil, fmt.Errorf("signer is required")
	}
	if !creds.Valid() {
		return nil, fmt.Errorf("api key, secret and passphrase are required")
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		signer:  signer,
		creds:   creds,
		http:    &http.Client{Timeout: cfg.Timeout},
		log:     log,
		now:     time.Now,
	}, nil
}

// PostOrder signs and submits a GTC limit order.
func (c *Client) PostOrder(ctx context.Context, args OrderArgs) (PostResult, error) {
	wire, err := c.signer.SignOrder(args)
	if err != nil {
		return PostResult{}, err
	}
	req := postOrderRequest{Order: wire, Owner: c.creds.APIKey, OrderType: "GTC"}
	var resp struct {
		Success  bool   `json:"success"`
		ErrorMsg string `json:"errorMsg"`
		OrderID  string `json:"orderID"`
		Status   string `json:"status"`
	}
	if err := c.do(ctx, http.MethodPost, "/order", req, &resp); err != nil {
		return PostResult{}, err
	}
	if !resp.Success && resp.ErrorMsg != "" {
		return PostResult{}, &apiError{status: http.StatusOK, message: resp.ErrorMsg}
	}
	status := resp.Status
	if status == "" {
		status = "live"
	}
	return PostResult{OrderID: resp.OrderID, Status: status}, nil
}

// CancelOrder cancels a single resting order. Returns ErrOrderNotFound when
// the exchange no longer knows the id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	body := map[string]string{"orderID": orderID}
	var resp struct {
		Canceled    []string          `json:"canceled"`
		NotCanceled map[string]string `json:"not_canceled"`
	}
	if err := c.do(ctx, http.MethodDelete, "/order", body, &resp); err != nil {
		return err
	}
	if reason, ok := resp.NotCanceled[orderID]; ok {
		lower := strings.ToLower(reason)
		if strings.Contains(lower, "not found") || strings.Contains(lower, "already") {
			return ErrOrderNotFound
		}
		return &apiError{status: http.StatusOK, message: reason}
	}
	return nil
}

// CancelAll cancels every resting order for the account.
func (c *Client) CancelAll(ctx context.Context) ([]string, error) {
	var resp struct {
		Canceled []string `json:"canceled"`
	}
	if err := c.do(ctx, http.MethodDelete, "/cancel-all", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Canceled, nil
}

func (c *Client) OpenOrders(ctx context.Context) ([]OpenOrder, error) {
	var raws []map[string]any
	if err := c.do(ctx, http.MethodGet, "/data/orders", nil, &raws); err != nil {
		return nil, err
	}
	orders := make([]OpenOrder, 0, len(raws))
	for _, raw := range raws {
		orders = append(orders, OpenOrder{
			ID:           anyString(raw["id"]),
			TokenID:      anyString(raw["asset_id"]),
			Side:         anyString(raw["side"]),
			Price:        anyDecimal(raw["price"]),
			OriginalSize: anyDecimal(raw["original_size"]),
			SizeMatched:  anyDecimal(raw["size_matched"]),
		})
	}
	return orders, nil
}

// Balance fetches the advisory collateral balance/allowance. The exchange's
// view may lag recent fills; treat it as a hint only.
func (c *Client) Balance(ctx context.Context) (Balance, error) {
	var raw map[string]any
	if err := c.do(ctx, http.MethodGet, "/balance-allowance?asset_type=COLLATERAL", nil, &raw); err != nil {
		return Balance{}, err
	}
	return Balance{
		BalanceUSD:   anyDecimal(raw["balance"]).Shift(-amountDecimals),
		AllowanceUSD: anyDecimal(raw["allowance"]).Shift(-amountDecimals),
	}, nil
}

// Book fetches the orderbook for a token. Unauthenticated endpoint.
func (c *Client) Book(ctx context.Context, tokenID string) (Book, error) {
	var raw struct {
		Bids []struct{ Price, Size string } `json:"bids"`
		Asks []struct{ Price, Size string } `json:"asks"`
	}
	path := "/book?token_id=" + url.QueryEscape(tokenID)
	if err := c.getPublic(ctx, path, &raw); err != nil {
		return Book{}, err
	}
	book := Book{TokenID: tokenID}
	for _, level := range raw.Bids {
		book.Bids = append(book.Bids, BookLevel{Price: anyDecimal(level.Price), Size: anyDecimal(level.Size)})
	}
	for _, level := range raw.Asks {
		book.Asks = append(book.Asks, BookLevel{Price: anyDecimal(level.Price), Size: anyDecimal(level.Size)})
	}
	return book, nil
}

var liquidSpread = decimal.RequireFromString("0.10")

// Best reduces a book to its touch. An empty side defaults to 0 / 1 like a
// book with no resting interest.
func (b Book) Best() BestPrices {
	best := BestPrices{BestBid: decimal.Zero, BestAsk: decimal.NewFromInt(1)}
	for _, level := range b.Bids {
		if level.Price.Cmp(best.BestBid) > 0 {
			best.BestBid = level.Price
		}
	}
	for _, level := range b.Asks {
		if level.Price.Cmp(best.BestAsk) < 0 {
			best.BestAsk = level.Price
		}
	}
	best.Spread = best.BestAsk.Sub(best.BestBid)
	best.Liquid = best.Spread.Cmp(liquidSpread) < 0
	return best
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	var err error
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.creds.apply(req, c.signer.Address().Hex(), path, string(payload), c.now()); err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) getPublic(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &apiError{status: resp.StatusCode, message: extractMessage(body)}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func extractMessage(body []byte) string {
	var decoded struct {
		Error    string `json:"error"`
		ErrorMsg string `json:"errorMsg"`
	}
	if err := json.Unmarshal(body, &decoded); err == nil {
		if decoded.ErrorMsg != "" {
			return decoded.ErrorMsg
		}
		if decoded.Error != "" {
			return decoded.Error
		}
	}
	return strings.TrimSpace(string(body))
}

func anyString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func anyDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case string:
		if d, err := decimal.NewFromString(val); err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(val)
	}
	return decimal.Zero
}
