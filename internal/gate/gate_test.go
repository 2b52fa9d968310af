package gate

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exhuman777/claude-trader/internal/order"
)

func makeBatch(name string) *order.Batch {
	o := &order.Order{
		TokenID: "tok",
		Side:    order.SideBuy,
		Price:   decimal.RequireFromString("0.35"),
		Size:    10,
		Status:  order.StatusPlanned,
	}
	return order.NewBatch(name, "mkt", "Will it rain?", order.SideBuy, []*order.Order{o}, time.Now())
}

func TestConfirmTokens(t *testing.T) {
	cases := []struct {
		text string
		want DraftState
	}{
		{"yes", StateConfirmed},
		{"YES", StateConfirmed},
		{" Confirm. ", StateConfirmed},
		{"go", StateConfirmed},
		{"y", StateConfirmed},
		{"do it", StateConfirmed},
		{"no", StateRejected},
		{"Cancel!", StateRejected},
		{"stop", StateRejected},
		{"n", StateRejected},
	}
	for _, tc := range cases {
		g := New(time.Minute, nil, nil)
		g.Propose(makeBatch("b"))
		d, err := g.HandleUtterance(tc.text)
		if err != nil || d == nil {
			t.Fatalf("HandleUtterance(%q) = %v, %v", tc.text, d, err)
		}
		if d.State != tc.want {
			t.Errorf("HandleUtterance(%q) state = %s, want %s", tc.text, d.State, tc.want)
		}
		if g.Pending() != nil {
			t.Errorf("draft still pending after %q", tc.text)
		}
	}
}

func TestNonTokenUtteranceLeavesDraftPending(t *testing.T) {
	g := New(time.Minute, nil, nil)
	g.Propose(makeBatch("b"))
	for _, text := range []string{"yes please but smaller", "maybe", "orders", "confirm it"} {
		d, err := g.HandleUtterance(text)
		if err != nil || d != nil {
			t.Errorf("HandleUtterance(%q) = %v, %v, want nil, nil", text, d, err)
		}
	}
	if g.Pending() == nil {
		t.Error("draft was consumed by a non-token utterance")
	}
}

func TestNoPendingDraft(t *testing.T) {
	g := New(time.Minute, nil, nil)
	if _, err := g.HandleUtterance("yes"); !errors.Is(err, ErrNoPending) {
		t.Errorf("got %v, want ErrNoPending", err)
	}
}

func TestProposeSupersedesPending(t *testing.T) {
	g := New(time.Minute, nil, nil)
	first, _ := g.Propose(makeBatch("first"))
	second, _ := g.Propose(makeBatch("second"))
	if first.State != StateSuperseded {
		t.Errorf("first draft state = %s, want superseded", first.State)
	}
	// Confirming now must execute the second draft, never the first.
	d, err := g.HandleUtterance("yes")
	if err != nil || d == nil {
		t.Fatalf("HandleUtterance: %v, %v", d, err)
	}
	if d.Batch.ID != second.Batch.ID {
		t.Errorf("confirmed %s, want %s", d.Batch.ID, second.Batch.ID)
	}
}

func TestDraftExpires(t *testing.T) {
	g := New(time.Minute, nil, nil)
	now := time.Now()
	g.now = func() time.Time { return now }
	d, _ := g.Propose(makeBatch("b"))

	now = now.Add(2 * time.Minute)
	if _, err := g.HandleUtterance("yes"); !errors.Is(err, ErrNoPending) {
		t.Errorf("confirm after TTL: got %v, want ErrNoPending", err)
	}
	if d.State != StateExpired {
		t.Errorf("draft state = %s, want expired", d.State)
	}
}

func TestRenderSummaryUsesCents(t *testing.T) {
	b := makeBatch("single buy")
	summary := RenderSummary(b)
	if !strings.Contains(summary, "35¢") {
		t.Errorf("summary missing cent price: %q", summary)
	}
	if strings.Contains(summary, "%") {
		t.Errorf("summary must never show percentages: %q", summary)
	}
	if !strings.Contains(summary, "$3.50") {
		t.Errorf("summary missing notional: %q", summary)
	}
	if RenderSummary(b) != summary {
		t.Error("summary is not deterministic")
	}
}
