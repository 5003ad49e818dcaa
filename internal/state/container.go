// Package state holds the in-memory view of one user's finance data and
// notifies observers whenever a slice of it is replaced.
package state

import (
	"context"
	"sync"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
)

type TransactionWriter interface {
	Add(ctx context.Context, uid string, in dto.TransactionInput) (string, error)
	Update(ctx context.Context, uid, id string, patch dto.TransactionPatch) error
	Delete(ctx context.Context, uid, id string) error
}

type BudgetWriter interface {
	SetCategoryBudget(ctx context.Context, uid, month, category string, req dto.CategoryBudgetRequest) error
	SetTotalBudget(ctx context.Context, uid, month string, req dto.TotalBudgetRequest) error
	RemoveCategoryBudget(ctx context.Context, uid, month, category string) error
	RemoveTotalBudget(ctx context.Context, uid, month string) error
}

type SettingsWriter interface {
	SetDefaultCurrency(ctx context.Context, uid, currency string) (dto.PropagationResult, error)
}

// Repositories are the write paths the container delegates to.
type Repositories struct {
	Expenses TransactionWriter
	Income   TransactionWriter
	Budgets  BudgetWriter
	Settings SettingsWriter
}

// Observer receives a deep copy of the state after every change. Observers
// run synchronously and must not call the Replace methods.
type Observer func(dto.Snapshot)

type Container struct {
	repos Repositories

	mu       sync.RWMutex
	expenses []models.Transaction
	income   []models.Transaction
	budgets  map[string]models.Budget
	settings models.Settings
	// month is the subscribed month; empty when no month is active.
	month    string

	// notify serialises observer delivery so snapshots arrive in change order.
	notify    sync.Mutex
	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

func New(repos Repositories) *Container {
	return &Container{
		repos:     repos,
		expenses:  []models.Transaction{},
		income:    []models.Transaction{},
		budgets:   map[string]models.Budget{},
		settings:  defaultSettings(),
		observers: map[int]Observer{},
	}
}

func defaultSettings() models.Settings {
	return models.Settings{DefaultCurrency: taxonomy.DefaultCurrency}
}

// Observe registers fn and returns a func that unregisters it.
func (c *Container) Observe(fn Observer) func() {
	c.obsMu.Lock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	c.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.obsMu.Lock()
			delete(c.observers, id)
			c.obsMu.Unlock()
		})
	}
}

// Snapshot returns a copy that shares no memory with the container.
func (c *Container) Snapshot() dto.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Container) snapshotLocked() dto.Snapshot {
	snap := dto.Snapshot{
		Expenses: cloneTransactions(c.expenses),
		Income:   cloneTransactions(c.income),
		Budgets:  make(map[string]models.Budget, len(c.budgets)+1),
		Settings: c.settings,
	}
	for k, b := range c.budgets {
		snap.Budgets[k] = b.Clone()
	}
	if c.month != "" {
		if _, ok := snap.Budgets[c.month]; !ok {
			snap.Budgets[c.month] = c.defaultBudget(c.month)
		}
	}
	return snap
}

func (c *Container) defaultBudget(month string) models.Budget {
	total := 0.0
	return models.Budget{
		Month:      month,
		Total:      &total,
		Categories: map[string]float64{},
		Currency:   c.settings.DefaultCurrency,
	}
}

func (c *Container) Expenses() []models.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneTransactions(c.expenses)
}

func (c *Container) Income() []models.Transaction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return cloneTransactions(c.income)
}

func (c *Container) Settings() models.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// Budget returns the month's budget, or a zero total with no categories in
// the user's default currency when the month has never been written.
func (c *Container) Budget(month string) models.Budget {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if b, ok := c.budgets[month]; ok {
		return b.Clone()
	}
	return c.defaultBudget(month)
}

// Month reports the active month, or "" when none is subscribed.
func (c *Container) Month() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.month
}

// --- Sinks fed by subscriptions. Each call replaces a slice wholesale. ---

func (c *Container) ReplaceExpenses(txs []models.Transaction) {
	c.replace(func() { c.expenses = cloneTransactions(txs) })
}

func (c *Container) ReplaceIncome(txs []models.Transaction) {
	c.replace(func() { c.income = cloneTransactions(txs) })
}

// SetMonth makes month the active month and drops budgets of every other
// month, since nothing refreshes them any more.
func (c *Container) SetMonth(month string) {
	c.replace(func() {
		c.month = month
		for k := range c.budgets {
			if k != month {
				delete(c.budgets, k)
			}
		}
	})
}

// ReplaceBudget stores the month document; nil drops the month so reads fall
// back to the default. Snapshots for a month other than the active one are
// ignored.
func (c *Container) ReplaceBudget(month string, b *models.Budget) {
	c.replace(func() {
		if c.month != "" && month != c.month {
			return
		}
		if b == nil {
			delete(c.budgets, month)
			return
		}
		cp := b.Clone()
		cp.Month = month
		if cp.Currency == "" {
			cp.Currency = c.settings.DefaultCurrency
		}
		c.budgets[month] = cp
	})
}

// ReplaceSettings stores the settings document; nil restores the defaults.
func (c *Container) ReplaceSettings(s *models.Settings) {
	c.replace(func() {
		if s == nil || s.DefaultCurrency == "" {
			c.settings = defaultSettings()
			return
		}
		c.settings = *s
	})
}

func (c *Container) replace(apply func()) {
	c.notify.Lock()
	defer c.notify.Unlock()

	c.mu.Lock()
	apply()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.obsMu.Lock()
	observers := make([]Observer, 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.obsMu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

func cloneTransactions(txs []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(txs))
	copy(out, txs)
	return out
}

// --- Mutation entry points. State converges through the subscriptions. ---

func (c *Container) AddExpense(ctx context.Context, uid string, in dto.TransactionInput) (string, error) {
	if uid == "" {
		return "", errs.Required("userId")
	}
	return c.repos.Expenses.Add(ctx, uid, in)
}

func (c *Container) UpdateExpense(ctx context.Context, uid, id string, patch dto.TransactionPatch) error {
	if err := requireIDs(uid, id); err != nil {
		return err
	}
	return c.repos.Expenses.Update(ctx, uid, id, patch)
}

func (c *Container) DeleteExpense(ctx context.Context, uid, id string) error {
	if err := requireIDs(uid, id); err != nil {
		return err
	}
	return c.repos.Expenses.Delete(ctx, uid, id)
}

func (c *Container) AddIncome(ctx context.Context, uid string, in dto.TransactionInput) (string, error) {
	if uid == "" {
		return "", errs.Required("userId")
	}
	return c.repos.Income.Add(ctx, uid, in)
}

func (c *Container) UpdateIncome(ctx context.Context, uid, id string, patch dto.TransactionPatch) error {
	if err := requireIDs(uid, id); err != nil {
		return err
	}
	return c.repos.Income.Update(ctx, uid, id, patch)
}

func (c *Container) DeleteIncome(ctx context.Context, uid, id string) error {
	if err := requireIDs(uid, id); err != nil {
		return err
	}
	return c.repos.Income.Delete(ctx, uid, id)
}

func (c *Container) SetCategoryBudget(ctx context.Context, uid, month, category string, req dto.CategoryBudgetRequest) error {
	if err := requireBudgetKeys(uid, month); err != nil {
		return err
	}
	if category == "" {
		return errs.Required("category")
	}
	return c.repos.Budgets.SetCategoryBudget(ctx, uid, month, category, req)
}

func (c *Container) SetTotalBudget(ctx context.Context, uid, month string, req dto.TotalBudgetRequest) error {
	if err := requireBudgetKeys(uid, month); err != nil {
		return err
	}
	return c.repos.Budgets.SetTotalBudget(ctx, uid, month, req)
}

func (c *Container) RemoveCategoryBudget(ctx context.Context, uid, month, category string) error {
	if err := requireBudgetKeys(uid, month); err != nil {
		return err
	}
	if category == "" {
		return errs.Required("category")
	}
	return c.repos.Budgets.RemoveCategoryBudget(ctx, uid, month, category)
}

func (c *Container) RemoveTotalBudget(ctx context.Context, uid, month string) error {
	if err := requireBudgetKeys(uid, month); err != nil {
		return err
	}
	return c.repos.Budgets.RemoveTotalBudget(ctx, uid, month)
}

func (c *Container) SetDefaultCurrency(ctx context.Context, uid, currency string) (dto.PropagationResult, error) {
	if uid == "" {
		return dto.PropagationResult{}, errs.Required("userId")
	}
	return c.repos.Settings.SetDefaultCurrency(ctx, uid, currency)
}

func requireIDs(uid, id string) error {
	if uid == "" {
		return errs.Required("userId")
	}
	if id == "" {
		return errs.Required("id")
	}
	return nil
}

func requireBudgetKeys(uid, month string) error {
	if uid == "" {
		return errs.Required("userId")
	}
	if month == "" {
		return errs.Required("month")
	}
	return nil
}
