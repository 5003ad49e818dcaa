package services

import (
	"context"
	"time"

	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/store/memstore"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
)

// --- Fakes ---

type stubDefaults struct {
	currency string
	err      error
	calls    int
}

func (s *stubDefaults) DefaultCurrency(_ context.Context, _ string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.currency, nil
}

// fixture wires real services over an in-memory store.
type fixture struct {
	mem      *memstore.Store
	settings *settingsService
	expenses *transactionRepository
	income   *transactionRepository
	budgets  *budgetRepository
}

func newFixture() *fixture {
	mem := memstore.New()
	expStore := mem.Transactions(taxonomy.Expense)
	incStore := mem.Transactions(taxonomy.Income)
	settings := NewSettingsService(mem.Settings(), expStore, incStore, mem.Budgets(), 0, nil)
	return &fixture{
		mem:      mem,
		settings: settings,
		expenses: NewTransactionRepository(taxonomy.Expense, expStore, settings, time.UTC, nil),
		income:   NewTransactionRepository(taxonomy.Income, incStore, settings, time.UTC, nil),
		budgets:  NewBudgetRepository(mem.Budgets(), settings, nil),
	}
}

func mustGet(f *fixture, uid, id string) models.Transaction {
	tx, err := f.expenses.Get(context.Background(), uid, id)
	if err != nil {
		panic(err)
	}
	return *tx
}
