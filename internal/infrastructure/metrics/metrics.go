package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the expense core.
type Metrics struct {
	// Group metrics
	GroupsCreated prometheus.Counter

	// Expense metrics
	ExpensesCreated prometheus.Counter
	ExpensesDeleted prometheus.Counter
	ExpenseAmount   prometheus.Histogram

	// Payment metrics
	SharesPaid      prometheus.Counter
	SharesUnmarked  prometheus.Counter
	SettlementsPaid prometheus.Counter

	// Settlement metrics
	SettlementsSuggested prometheus.Counter
	SettlementsVoided    prometheus.Counter

	// Balance metrics
	BalanceRecomputes  prometheus.Counter
	BalanceCacheHits   prometheus.Counter
	BalanceCacheMisses prometheus.Counter
	UnbalancedLedgers  prometheus.Counter
}

var (
	once     sync.Once
	instance *Metrics
)

// New returns the process-wide Metrics instance, registering all
// collectors on first call.
func New() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			GroupsCreated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_groups_created_total",
				Help: "Total number of groups created",
			}),
			ExpensesCreated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_expenses_created_total",
				Help: "Total number of expenses created",
			}),
			ExpensesDeleted: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_expenses_deleted_total",
				Help: "Total number of expenses deleted",
			}),
			ExpenseAmount: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "splitledger_expense_amount",
				Help:    "Expense amounts",
				Buckets: []float64{1, 10, 50, 100, 500, 1000, 10000},
			}),
			SharesPaid: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_shares_paid_total",
				Help: "Total number of shares marked paid",
			}),
			SharesUnmarked: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_shares_unmarked_total",
				Help: "Total number of shares reverted to unpaid by admin action",
			}),
			SettlementsPaid: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_settlements_paid_total",
				Help: "Total number of settlements marked paid",
			}),
			SettlementsSuggested: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_settlements_suggested_total",
				Help: "Total number of suggested settlements generated",
			}),
			SettlementsVoided: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_settlements_voided_total",
				Help: "Total number of paid settlements voided",
			}),
			BalanceRecomputes: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_balance_recomputes_total",
				Help: "Total number of balance vector recomputations",
			}),
			BalanceCacheHits: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_balance_cache_hits_total",
				Help: "Total number of balance reads served from cache",
			}),
			BalanceCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_balance_cache_misses_total",
				Help: "Total number of balance reads that missed the cache",
			}),
			UnbalancedLedgers: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_unbalanced_ledgers_total",
				Help: "Total number of sum-to-zero violations detected",
			}),
		}
	})

	return instance
}
