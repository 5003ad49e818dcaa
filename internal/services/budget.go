package services

import (
	"context"
	"strings"
	"time"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/metrics"
	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/period"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
	"github.com/GregMSThompson/finance-sync/pkg/logger"
)

const budgetEntity = "budgets"

type budgetStore interface {
	SetCategory(ctx context.Context, uid, month string, w dto.CategoryBudgetWrite) error
	SetTotal(ctx context.Context, uid, month string, amount float64, currency string) error
	RemoveCategory(ctx context.Context, uid, month, category string) error
	RemoveTotal(ctx context.Context, uid, month string) error
	Get(ctx context.Context, uid, month string) (*models.Budget, error)
	List(ctx context.Context, uid string) ([]models.Budget, error)
	Watch(ctx context.Context, uid, month string) (<-chan *models.Budget, <-chan error)
}

type budgetRepository struct {
	store    budgetStore
	defaults currencyDefaulter
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewBudgetRepository(store budgetStore, defaults currencyDefaulter, m *metrics.Metrics) *budgetRepository {
	return &budgetRepository{store: store, defaults: defaults, metrics: m, now: time.Now}
}

// SetCategoryBudget upserts one category ceiling for month without touching
// the other categories or the total. Empty currency, period and start date
// fall back to the user's default currency, Monthly and now.
func (r *budgetRepository) SetCategoryBudget(ctx context.Context, uid, month, category string, req dto.CategoryBudgetRequest) error {
	if err := validateMonthKey(uid, month); err != nil {
		return err
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return errs.Required("category")
	}
	if !taxonomy.IsCategory(taxonomy.Expense, category) {
		return errs.NewValidationError("category", "unknown expense category: "+category)
	}
	if err := validateAmount(req.Amount); err != nil {
		return err
	}

	w := dto.CategoryBudgetWrite{
		Category:  category,
		Amount:    req.Amount,
		Period:    taxonomy.PeriodMonthly,
		StartDate: r.now(),
	}
	if req.Period != "" {
		if !taxonomy.IsPeriod(req.Period) {
			return errs.NewValidationError("period", "unsupported period: "+req.Period)
		}
		w.Period = req.Period
	}
	if req.StartDate != nil && !req.StartDate.IsZero() {
		w.StartDate = *req.StartDate
	}
	currency, err := r.currency(ctx, uid, req.Currency)
	if err != nil {
		return err
	}
	w.Currency = currency

	err = r.store.SetCategory(ctx, uid, month, w)
	r.metrics.Write(budgetEntity, "set_category", err)
	if err != nil {
		return err
	}
	logger.FromContext(ctx).Debug("category budget set", "month", month, "category", category)
	return nil
}

func (r *budgetRepository) SetTotalBudget(ctx context.Context, uid, month string, req dto.TotalBudgetRequest) error {
	if err := validateMonthKey(uid, month); err != nil {
		return err
	}
	if err := validateAmount(req.Amount); err != nil {
		return err
	}
	currency, err := r.currency(ctx, uid, req.Currency)
	if err != nil {
		return err
	}
	err = r.store.SetTotal(ctx, uid, month, req.Amount, currency)
	r.metrics.Write(budgetEntity, "set_total", err)
	return err
}

func (r *budgetRepository) RemoveCategoryBudget(ctx context.Context, uid, month, category string) error {
	if err := validateMonthKey(uid, month); err != nil {
		return err
	}
	if strings.TrimSpace(category) == "" {
		return errs.Required("category")
	}
	err := r.store.RemoveCategory(ctx, uid, month, category)
	r.metrics.Write(budgetEntity, "remove_category", err)
	return err
}

// RemoveTotalBudget deletes only the total. The month document stays even
// when nothing else is left in it.
func (r *budgetRepository) RemoveTotalBudget(ctx context.Context, uid, month string) error {
	if err := validateMonthKey(uid, month); err != nil {
		return err
	}
	err := r.store.RemoveTotal(ctx, uid, month)
	r.metrics.Write(budgetEntity, "remove_total", err)
	return err
}

// WatchMonth subscribes to the month document. A month that has never been
// written is delivered as nil.
func (r *budgetRepository) WatchMonth(ctx context.Context, uid, month string) (<-chan *models.Budget, <-chan error, error) {
	if err := validateMonthKey(uid, month); err != nil {
		return nil, nil, err
	}
	snaps, errCh := r.store.Watch(ctx, uid, month)
	return snaps, errCh, nil
}

// GetMonth reads the month document, returning the empty default for a month
// that has never been written.
func (r *budgetRepository) GetMonth(ctx context.Context, uid, month string) (models.Budget, error) {
	if err := validateMonthKey(uid, month); err != nil {
		return models.Budget{}, err
	}
	b, err := r.store.Get(ctx, uid, month)
	if errs.IsNotFound(err) {
		currency, err := r.defaults.DefaultCurrency(ctx, uid)
		if err != nil {
			return models.Budget{}, err
		}
		return models.Budget{Month: month, Categories: map[string]float64{}, Currency: currency}, nil
	}
	if err != nil {
		return models.Budget{}, err
	}
	return *b, nil
}

func (r *budgetRepository) ListMonths(ctx context.Context, uid string) ([]models.Budget, error) {
	if uid == "" {
		return nil, errs.Required("userId")
	}
	return r.store.List(ctx, uid)
}

func (r *budgetRepository) currency(ctx context.Context, uid, currency string) (string, error) {
	if currency == "" {
		return r.defaults.DefaultCurrency(ctx, uid)
	}
	if !taxonomy.IsCurrency(currency) {
		return "", errs.NewValidationError("currency", "unsupported currency: "+currency)
	}
	return currency, nil
}

func validateMonthKey(uid, month string) error {
	if uid == "" {
		return errs.Required("userId")
	}
	return period.Validate(month)
}
