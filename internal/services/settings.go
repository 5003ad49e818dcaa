package services

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/metrics"
	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
	"github.com/GregMSThompson/finance-sync/pkg/logger"
)

type settingsStore interface {
	Get(ctx context.Context, uid string) (*models.Settings, error)
	SetDefaultCurrency(ctx context.Context, uid, currency string) error
	Watch(ctx context.Context, uid string) (<-chan *models.Settings, <-chan error)
}

// transactionRelabeler is the part of a transaction store the currency
// fan-out needs.
type transactionRelabeler interface {
	List(ctx context.Context, uid string, window *dto.DateWindow) ([]models.Transaction, error)
	SetCurrency(ctx context.Context, uid, id, currency string) error
}

type budgetRelabeler interface {
	List(ctx context.Context, uid string) ([]models.Budget, error)
	SetCurrency(ctx context.Context, uid, month, currency string) error
}

type settingsService struct {
	store       settingsStore
	expenses    transactionRelabeler
	income      transactionRelabeler
	budgets     budgetRelabeler
	concurrency int
	metrics     *metrics.Metrics
}

// NewSettingsService builds the settings reader and currency propagator.
// concurrency caps in-flight fan-out updates; 0 means no limit.
func NewSettingsService(store settingsStore, expenses, income transactionRelabeler, budgets budgetRelabeler, concurrency int, m *metrics.Metrics) *settingsService {
	return &settingsService{
		store:       store,
		expenses:    expenses,
		income:      income,
		budgets:     budgets,
		concurrency: concurrency,
		metrics:     m,
	}
}

// Get returns the user's settings, or the defaults when none were saved.
func (s *settingsService) Get(ctx context.Context, uid string) (models.Settings, error) {
	if uid == "" {
		return models.Settings{}, errs.Required("userId")
	}
	st, err := s.store.Get(ctx, uid)
	if errs.IsNotFound(err) {
		return models.Settings{DefaultCurrency: taxonomy.DefaultCurrency}, nil
	}
	if err != nil {
		return models.Settings{}, err
	}
	if st.DefaultCurrency == "" {
		st.DefaultCurrency = taxonomy.DefaultCurrency
	}
	return *st, nil
}

func (s *settingsService) DefaultCurrency(ctx context.Context, uid string) (string, error) {
	st, err := s.Get(ctx, uid)
	if err != nil {
		return "", err
	}
	return st.DefaultCurrency, nil
}

// Watch subscribes to the settings document. Nil means not yet written.
func (s *settingsService) Watch(ctx context.Context, uid string) (<-chan *models.Settings, <-chan error, error) {
	if uid == "" {
		return nil, nil, errs.Required("userId")
	}
	snaps, errCh := s.store.Watch(ctx, uid)
	return snaps, errCh, nil
}

// SetDefaultCurrency saves the new default and relabels every existing record.
func (s *settingsService) SetDefaultCurrency(ctx context.Context, uid, currency string) (dto.PropagationResult, error) {
	if err := validateCurrencyChange(uid, currency); err != nil {
		return dto.PropagationResult{}, err
	}
	err := s.store.SetDefaultCurrency(ctx, uid, currency)
	s.metrics.Write("settings", "set", err)
	if err != nil {
		return dto.PropagationResult{}, err
	}
	return s.OnDefaultCurrencyChanged(ctx, uid, currency)
}

// OnDefaultCurrencyChanged sets currency on every budget month, expense and
// income record of uid. All updates are issued concurrently and awaited; if
// any is rejected the call fails with a PropagationPartialFailureError
// naming the failed documents. Amounts are relabelled, never converted.
func (s *settingsService) OnDefaultCurrencyChanged(ctx context.Context, uid, currency string) (dto.PropagationResult, error) {
	result := dto.PropagationResult{Currency: currency}
	if err := validateCurrencyChange(uid, currency); err != nil {
		return result, err
	}

	budgets, err := s.budgets.List(ctx, uid)
	if err != nil {
		return result, err
	}
	expenses, err := s.expenses.List(ctx, uid, nil)
	if err != nil {
		return result, err
	}
	income, err := s.income.List(ctx, uid, nil)
	if err != nil {
		return result, err
	}
	result.Budgets = len(budgets)
	result.Expenses = len(expenses)
	result.Income = len(income)

	var (
		mu       sync.Mutex
		failures []propagationFailure
	)
	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	update := func(path string, fn func() error) {
		g.Go(func() error {
			err := fn()
			s.metrics.PropagationUpdate(err)
			if err != nil {
				mu.Lock()
				failures = append(failures, propagationFailure{path: path, err: err})
				mu.Unlock()
			}
			// failures are collected rather than returned so every update runs
			return nil
		})
	}

	for _, b := range budgets {
		month := b.Month
		update("budgets/"+month, func() error { return s.budgets.SetCurrency(ctx, uid, month, currency) })
	}
	for _, tx := range expenses {
		id := tx.ID
		update(string(taxonomy.Expense)+"/"+id, func() error { return s.expenses.SetCurrency(ctx, uid, id, currency) })
	}
	for _, tx := range income {
		id := tx.ID
		update(string(taxonomy.Income)+"/"+id, func() error { return s.income.SetCurrency(ctx, uid, id, currency) })
	}
	_ = g.Wait()

	log := logger.FromContext(ctx)
	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool { return failures[i].path < failures[j].path })
		failed := make([]string, len(failures))
		causes := make([]error, len(failures))
		for i, f := range failures {
			failed[i] = f.path
			causes[i] = f.err
		}
		log.Warn("currency propagation incomplete", "currency", currency, "total", result.Total(), "failed", len(failed))
		return result, errs.NewPropagationPartialFailureError(result.Total(), failed, causes)
	}
	log.Info("currency propagated", "currency", currency, "documents", result.Total())
	return result, nil
}

type propagationFailure struct {
	path string
	err  error
}

func validateCurrencyChange(uid, currency string) error {
	if uid == "" {
		return errs.Required("userId")
	}
	if currency == "" {
		return errs.Required("currency")
	}
	if !taxonomy.IsCurrency(currency) {
		return errs.NewValidationError("currency", "unsupported currency: "+currency)
	}
	return nil
}
