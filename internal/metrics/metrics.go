package metrics

type Counter interface {
	Inc()
}

type Metrics struct {
	OrdersSubmitted        Counter
	OrdersRejected         Counter
	OrderRetries           Counter
	OrdersCancelled        Counter
	BatchesCompleted       Counter
	BatchesPartiallyFailed Counter
	BatchesCancelled       Counter
	StrategyDecisions      Counter
	DryRunDecisions        Counter
	DraftsSuperseded       Counter
	DraftsExpired          Counter
}

type noopCounter struct{}

func (noopCounter) Inc() {}

func NewNoop() *Metrics {
	n := noopCounter{}
	return &Metrics{
		OrdersSubmitted:        n,
		OrdersRejected:         n,
		OrderRetries:           n,
		OrdersCancelled:        n,
		BatchesCompleted:       n,
		BatchesPartiallyFailed: n,
		BatchesCancelled:       n,
		StrategyDecisions:      n,
		DryRunDecisions:        n,
		DraftsSuperseded:       n,
		DraftsExpired:          n,
	}
}
