// Package realtime opens the change subscriptions for a user and month and
// feeds every snapshot into a state sink.
package realtime

import (
	"context"

	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/metrics"
	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/period"
	"github.com/GregMSThompson/finance-sync/pkg/logger"
)

const (
	StreamExpenses = "expenses"
	StreamIncome   = "income"
	StreamBudget   = "budget"
	StreamSettings = "settings"
)

type TransactionSource interface {
	QueryByMonth(ctx context.Context, uid, month string) (<-chan []models.Transaction, <-chan error, error)
}

type BudgetSource interface {
	WatchMonth(ctx context.Context, uid, month string) (<-chan *models.Budget, <-chan error, error)
}

type SettingsSource interface {
	Watch(ctx context.Context, uid string) (<-chan *models.Settings, <-chan error, error)
}

// Sink receives complete replacements of each state slice.
type Sink interface {
	SetMonth(month string)
	ReplaceExpenses(txs []models.Transaction)
	ReplaceIncome(txs []models.Transaction)
	ReplaceBudget(month string, b *models.Budget)
	ReplaceSettings(s *models.Settings)
}

type Controller struct {
	expenses TransactionSource
	income   TransactionSource
	budgets  BudgetSource
	settings SettingsSource
	metrics  *metrics.Metrics
}

func NewController(expenses, income TransactionSource, budgets BudgetSource, settings SettingsSource, m *metrics.Metrics) *Controller {
	return &Controller{
		expenses: expenses,
		income:   income,
		budgets:  budgets,
		settings: settings,
		metrics:  m,
	}
}

// Subscribe opens the expense and income streams for month (all records when
// month is empty) and, when month is set, the budget stream for that month.
// The sink is told the new month first so it can drop budgets of other months.
// The controller keeps no record of earlier calls; the caller must Cancel a
// previous Subscription before replacing it.
func (c *Controller) Subscribe(ctx context.Context, uid, month string, sink Sink) (*Subscription, error) {
	if uid == "" {
		return nil, errs.Required("userId")
	}
	if month != "" {
		if err := period.Validate(month); err != nil {
			return nil, err
		}
	}
	log, ctx := logger.With(ctx, "uid", uid, "month", month)
	sub := newSubscription(ctx, 3)
	sink.SetMonth(month)

	expenses, expErr, err := c.expenses.QueryByMonth(sub.ctx, uid, month)
	if err != nil {
		sub.abort()
		return nil, err
	}
	follow(sub, c.metrics, StreamExpenses, expenses, expErr, sink.ReplaceExpenses)

	income, incErr, err := c.income.QueryByMonth(sub.ctx, uid, month)
	if err != nil {
		sub.abort()
		return nil, err
	}
	follow(sub, c.metrics, StreamIncome, income, incErr, sink.ReplaceIncome)

	if month != "" {
		budget, budErr, err := c.budgets.WatchMonth(sub.ctx, uid, month)
		if err != nil {
			sub.abort()
			return nil, err
		}
		follow(sub, c.metrics, StreamBudget, budget, budErr, func(b *models.Budget) {
			sink.ReplaceBudget(month, b)
		})
	}

	sub.seal()
	log.Debug("subscription opened")
	return sub, nil
}

// SubscribeSettings opens the settings stream on its own handle so it can
// outlive month changes.
func (c *Controller) SubscribeSettings(ctx context.Context, uid string, sink Sink) (*Subscription, error) {
	if uid == "" {
		return nil, errs.Required("userId")
	}
	_, ctx = logger.With(ctx, "uid", uid)
	sub := newSubscription(ctx, 1)

	settings, setErr, err := c.settings.Watch(sub.ctx, uid)
	if err != nil {
		sub.abort()
		return nil, err
	}
	follow(sub, c.metrics, StreamSettings, settings, setErr, sink.ReplaceSettings)
	sub.seal()
	return sub, nil
}

// follow applies every snapshot from one stream until it ends. A stream that
// fails, or ends while the subscription is still live, is reported on the
// subscription's error channel.
func follow[T any](sub *Subscription, m *metrics.Metrics, stream string, snaps <-chan T, errCh <-chan error, apply func(T)) {
	sub.wg.Add(1)
	go func() {
		defer sub.wg.Done()
		log := logger.FromContext(sub.ctx).With("stream", stream)
		m.StreamOpened(stream)
		defer m.StreamClosed(stream)

		reported := false
		for snaps != nil || errCh != nil {
			select {
			case v, ok := <-snaps:
				if !ok {
					snaps = nil
					continue
				}
				apply(v)
				m.SnapshotApplied(stream)
			case err, ok := <-errCh:
				if !ok {
					errCh = nil
					continue
				}
				if err == nil {
					continue
				}
				log.Error("stream failed", "error", err)
				m.StreamFailed(stream)
				sub.report(errs.NewStreamError(stream, err))
				reported = true
			}
		}

		if !reported && sub.ctx.Err() == nil {
			log.Warn("stream ended unexpectedly")
			m.StreamFailed(stream)
			sub.report(errs.NewStreamError(stream, nil))
		}
	}()
}
