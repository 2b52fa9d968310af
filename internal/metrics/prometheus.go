package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const promNamespace = "claude_trader"

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

type Prometheus struct {
	Metrics  *Metrics
	registry *prometheus.Registry
}

func NewPrometheus() *Prometheus {
	registry := prometheus.NewRegistry()
	counter := func(name, help string) prometheus.Counter {
		c := prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: promNamespace,
			Name:      name,
			Help:      help,
		})
		registry.MustRegister(c)
		return c
	}
	m := &Metrics{
		OrdersSubmitted:        promCounter{counter("orders_submitted_total", "Orders that reached live or matched.")},
		OrdersRejected:         promCounter{counter("orders_rejected_total", "Orders rejected after validation or retries.")},
		OrderRetries:           promCounter{counter("order_retries_total", "Retry attempts across all orders.")},
		OrdersCancelled:        promCounter{counter("orders_cancelled_total", "Orders cancelled on the exchange.")},
		BatchesCompleted:       promCounter{counter("batches_completed_total", "Batches where every order went live or matched.")},
		BatchesPartiallyFailed: promCounter{counter("batches_partially_failed_total", "Batches with at least one rejected order.")},
		BatchesCancelled:       promCounter{counter("batches_cancelled_total", "Batches cancelled by the user mid-execution.")},
		StrategyDecisions:      promCounter{counter("strategy_decisions_total", "Decisions emitted by automation strategies.")},
		DryRunDecisions:        promCounter{counter("dry_run_decisions_total", "Decisions discarded at the dry-run boundary.")},
		DraftsSuperseded:       promCounter{counter("drafts_superseded_total", "Pending confirmations replaced by a newer draft.")},
		DraftsExpired:          promCounter{counter("drafts_expired_total", "Pending confirmations that timed out.")},
	}
	return &Prometheus{Metrics: m, registry: registry}
}

func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
