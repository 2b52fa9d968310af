package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exhuman777/claude-trader/internal/order"
	"github.com/exhuman777/claude-trader/internal/poly/clob"
)

type fakeExchange struct {
	postCalls   int
	cancelCalls int
	postResult  clob.PostResult
	postErr     error
	cancelErr   error
}

func (f *fakeExchange) PostOrder(ctx context.Context, args clob.OrderArgs) (clob.PostResult, error) {
	_ = ctx
	_ = args
	f.postCalls++
	return f.postResult, f.postErr
}

func (f *fakeExchange) CancelOrder(ctx context.Context, orderID string) error {
	_ = ctx
	_ = orderID
	f.cancelCalls++
	return f.cancelErr
}

type openBudget struct{}

func (openBudget) Acquire(ctx context.Context) error { return ctx.Err() }

func validOrder() *order.Order {
	return &order.Order{
		TokenID: "tok",
		Side:    order.SideBuy,
		Price:   decimal.RequireFromString("0.35"),
		Size:    10,
	}
}

func newTestGateway(ex Exchange) *Gateway {
	return New(ex, openBudget{}, time.Second, nil, nil)
}

func TestSubmitSuccess(t *testing.T) {
	ex := &fakeExchange{postResult: clob.PostResult{OrderID: "o-1", Status: "live"}}
	res := newTestGateway(ex).Submit(context.Background(), validOrder(), false)
	if !res.OK() {
		t.Fatalf("Submit failed: %+v", res)
	}
	if res.OrderID != "o-1" || res.Status != order.StatusLive {
		t.Errorf("result = %+v", res)
	}
}

func TestSubmitMatchedStatus(t *testing.T) {
	ex := &fakeExchange{postResult: clob.PostResult{OrderID: "o-1", Status: "matched"}}
	res := newTestGateway(ex).Submit(context.Background(), validOrder(), false)
	if res.Status != order.StatusMatched {
		t.Errorf("status = %s, want matched", res.Status)
	}
}

func TestSubmitValidationFailsBeforeNetwork(t *testing.T) {
	ex := &fakeExchange{}
	gw := newTestGateway(ex)
	bad := []*order.Order{
		nil,
		{TokenID: "", Side: order.SideBuy, Price: decimal.RequireFromString("0.35"), Size: 10},
		{TokenID: "tok", Side: "HOLD", Price: decimal.RequireFromString("0.35"), Size: 10},
		{TokenID: "tok", Side: order.SideBuy, Price: decimal.RequireFromString("1"), Size: 10},
		{TokenID: "tok", Side: order.SideBuy, Price: decimal.RequireFromString("0.35"), Size: 0},
	}
	for i, o := range bad {
		res := gw.Submit(context.Background(), o, false)
		if res.Kind != order.KindValidation {
			t.Errorf("case %d: kind = %s, want validation", i, res.Kind)
		}
	}
	if ex.postCalls != 0 {
		t.Errorf("exchange was called %d times for invalid orders", ex.postCalls)
	}
}

func TestSubmitClassifiesExchangeErrors(t *testing.T) {
	ex := &fakeExchange{postErr: errors.New("not enough balance / allowance")}
	res := newTestGateway(ex).Submit(context.Background(), validOrder(), false)
	if res.Kind != order.KindInsufficientBalance {
		t.Errorf("kind = %s, want insufficient_balance", res.Kind)
	}
}

func TestCancelIdempotent(t *testing.T) {
	ex := &fakeExchange{cancelErr: clob.ErrOrderNotFound}
	res := newTestGateway(ex).Cancel(context.Background(), "o-1")
	if res.Err != nil || !res.AlreadyDone {
		t.Errorf("result = %+v, want already-done success", res)
	}
}

func TestCancelRequiresID(t *testing.T) {
	ex := &fakeExchange{}
	res := newTestGateway(ex).Cancel(context.Background(), "")
	if res.Kind != order.KindValidation {
		t.Errorf("kind = %s, want validation", res.Kind)
	}
	if ex.cancelCalls != 0 {
		t.Error("exchange called for empty order id")
	}
}
