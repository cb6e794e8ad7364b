package worker

import (
	"context"
	"fmt"
	"time"

	"budgetbuddy/internal/amqp"
	"budgetbuddy/internal/cache"
	"budgetbuddy/internal/log"
)

// maxTracked bounds the number of remembered alerts.
const maxTracked = 10000

// Notifier delivers an alert line to whoever should see it.
type Notifier interface {
	Notify(ctx context.Context, user, text string) error
}

// LogNotifier writes alerts to the structured log.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, user, text string) error {
	n.logger.WarnContext(ctx, "Budget exceeded", log.FieldUser, user, "alert", text)
	return nil
}

// AlertWorker handles budget alerts coming off the queue. The dashboard
// publishes on every render of an exceeded budget, so repeats for the same
// user, duration and window are collapsed.
type AlertWorker struct {
	notifier Notifier
	logger   *log.Logger
	seen     *cache.LRU[struct{}]
}

func NewAlertWorker(notifier Notifier, ttl time.Duration) *AlertWorker {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AlertWorker{
		notifier: notifier,
		logger:   log.Default(log.ComponentWorker),
		seen:     cache.NewLRU[struct{}](maxTracked, ttl),
	}
}

// HandleAlert processes a single budget alert from AMQP
func (w *AlertWorker) HandleAlert(ctx context.Context, msg *amqp.BudgetExceededMessage) error {
	key := dedupeKey(msg)
	if !w.seen.SetIfAbsent(key, struct{}{}) {
		w.logger.DebugContext(ctx, "Skipping repeated budget alert",
			log.FieldUser, msg.User,
			"duration", msg.Duration)
		return nil
	}

	if err := w.notifier.Notify(ctx, msg.User, msg.Text()); err != nil {
		w.seen.Delete(key)
		return fmt.Errorf("notify %s: %w", msg.User, err)
	}

	w.logger.InfoContext(ctx, "Processed budget alert",
		log.FieldUser, msg.User,
		"duration", msg.Duration,
		log.FieldSpent, msg.Spent,
		log.FieldBudget, msg.Budget,
		log.FieldOperation, log.OpConsume)
	return nil
}

// Prune forgets alerts older than the ttl. Returns how many were dropped.
func (w *AlertWorker) Prune() int {
	return w.seen.CleanExpired()
}

func dedupeKey(msg *amqp.BudgetExceededMessage) string {
	return msg.User + "|" + msg.Duration + "|" + msg.WindowEnd
}
