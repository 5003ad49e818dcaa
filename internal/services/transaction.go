package services

import (
	"context"
	"math"
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

// transactionStore is the storage interface for one transaction collection.
type transactionStore interface {
	Add(ctx context.Context, uid string, tx *models.Transaction) (string, error)
	Update(ctx context.Context, uid, id string, patch dto.TransactionPatch) error
	Delete(ctx context.Context, uid, id string) error
	Get(ctx context.Context, uid, id string) (*models.Transaction, error)
	List(ctx context.Context, uid string, window *dto.DateWindow) ([]models.Transaction, error)
	Watch(ctx context.Context, uid string, window *dto.DateWindow) (<-chan []models.Transaction, <-chan error)
}

// currencyDefaulter resolves a user's default currency.
type currencyDefaulter interface {
	DefaultCurrency(ctx context.Context, uid string) (string, error)
}

// transactionRepository applies defaulting and validation for expenses or
// income before handing records to the store.
type transactionRepository struct {
	entity   taxonomy.Entity
	store    transactionStore
	defaults currencyDefaulter
	loc      *time.Location
	metrics  *metrics.Metrics
}

func NewTransactionRepository(entity taxonomy.Entity, store transactionStore, defaults currencyDefaulter, loc *time.Location, m *metrics.Metrics) *transactionRepository {
	if loc == nil {
		loc = time.Local
	}
	return &transactionRepository{entity: entity, store: store, defaults: defaults, loc: loc, metrics: m}
}

func (r *transactionRepository) Entity() taxonomy.Entity { return r.entity }

func (r *transactionRepository) Add(ctx context.Context, uid string, in dto.TransactionInput) (string, error) {
	if uid == "" {
		return "", errs.Required("userId")
	}
	if in.Date == nil || in.Date.IsZero() {
		return "", errs.Required("date")
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return "", errs.Required("title")
	}
	if err := validateAmount(in.Amount); err != nil {
		return "", err
	}

	tx := &models.Transaction{
		Title:  title,
		Amount: in.Amount,
		Date:   *in.Date,
	}
	if err := r.applyDefaults(ctx, uid, tx, in.Currency, in.Category); err != nil {
		return "", err
	}

	id, err := r.store.Add(ctx, uid, tx)
	r.metrics.Write(string(r.entity), "create", err)
	if err != nil {
		return "", err
	}
	logger.FromContext(ctx).Debug("transaction added", "entity", r.entity, "id", id)
	return id, nil
}

func (r *transactionRepository) Update(ctx context.Context, uid, id string, patch dto.TransactionPatch) error {
	if uid == "" {
		return errs.Required("userId")
	}
	if id == "" {
		return errs.Required("id")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return errs.Required("title")
		}
		patch.Title = &title
	}
	if patch.Amount != nil {
		if err := validateAmount(*patch.Amount); err != nil {
			return err
		}
	}
	if patch.Date != nil && patch.Date.IsZero() {
		return errs.Required("date")
	}
	if patch.Category != nil && !taxonomy.IsCategory(r.entity, *patch.Category) {
		return errs.NewValidationError("category", "unknown "+string(r.entity)+" category: "+*patch.Category)
	}

	currency, err := r.resolveCurrency(ctx, uid, patch.Currency)
	if err != nil {
		return err
	}
	patch.Currency = &currency

	err = r.store.Update(ctx, uid, id, patch)
	r.metrics.Write(string(r.entity), "update", err)
	return err
}

func (r *transactionRepository) Delete(ctx context.Context, uid, id string) error {
	if uid == "" {
		return errs.Required("userId")
	}
	if id == "" {
		return errs.Required("id")
	}
	err := r.store.Delete(ctx, uid, id)
	r.metrics.Write(string(r.entity), "delete", err)
	return err
}

func (r *transactionRepository) Get(ctx context.Context, uid, id string) (*models.Transaction, error) {
	if uid == "" {
		return nil, errs.Required("userId")
	}
	if id == "" {
		return nil, errs.Required("id")
	}
	return r.store.Get(ctx, uid, id)
}

// QueryByMonth opens a live subscription to the records dated inside month,
// or to every record when month is empty. Each value on the first channel is
// the complete ordered result set.
func (r *transactionRepository) QueryByMonth(ctx context.Context, uid, month string) (<-chan []models.Transaction, <-chan error, error) {
	window, err := r.window(uid, month)
	if err != nil {
		return nil, nil, err
	}
	snaps, errCh := r.store.Watch(ctx, uid, window)
	return snaps, errCh, nil
}

// ListByMonth is the one-shot form of QueryByMonth.
func (r *transactionRepository) ListByMonth(ctx context.Context, uid, month string) ([]models.Transaction, error) {
	window, err := r.window(uid, month)
	if err != nil {
		return nil, err
	}
	return r.store.List(ctx, uid, window)
}

func (r *transactionRepository) window(uid, month string) (*dto.DateWindow, error) {
	if uid == "" {
		return nil, errs.Required("userId")
	}
	if month == "" {
		return nil, nil
	}
	w, err := period.Window(month, r.loc)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// applyDefaults fills currency and category from the defaulting table and
// validates the results.
func (r *transactionRepository) applyDefaults(ctx context.Context, uid string, tx *models.Transaction, currency, category *string) error {
	tx.Category = taxonomy.CategoryOther
	if category != nil && *category != "" {
		tx.Category = *category
	}
	if !taxonomy.IsCategory(r.entity, tx.Category) {
		return errs.NewValidationError("category", "unknown "+string(r.entity)+" category: "+tx.Category)
	}

	cur, err := r.resolveCurrency(ctx, uid, currency)
	if err != nil {
		return err
	}
	tx.Currency = cur
	return nil
}

func (r *transactionRepository) resolveCurrency(ctx context.Context, uid string, currency *string) (string, error) {
	if currency != nil && *currency != "" {
		if !taxonomy.IsCurrency(*currency) {
			return "", errs.NewValidationError("currency", "unsupported currency: "+*currency)
		}
		return *currency, nil
	}
	return r.defaults.DefaultCurrency(ctx, uid)
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return errs.NewValidationError("amount", "amount must be a finite number")
	}
	if amount < 0 {
		return errs.NewValidationError("amount", "amount must not be negative")
	}
	return nil
}
