package memstore

import (
	"context"
	"sort"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/models"
)

type Budgets struct {
	s *Store
}

// SetCategory merges one category ceiling, creating the month on first use.
func (b *Budgets) SetCategory(ctx context.Context, uid, month string, w dto.CategoryBudgetWrite) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	if err := b.s.beginWrite("set", collBudgets, month); err != nil {
		return err
	}
	doc := b.load(uid, month)
	doc.Categories[w.Category] = w.Amount
	doc.Currency = w.Currency
	doc.Period = w.Period
	start := w.StartDate
	doc.StartDate = &start
	b.save(uid, doc)
	return nil
}

func (b *Budgets) SetTotal(ctx context.Context, uid, month string, amount float64, currency string) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	if err := b.s.beginWrite("set", collBudgets, month); err != nil {
		return err
	}
	doc := b.load(uid, month)
	doc.Total = &amount
	doc.Currency = currency
	b.save(uid, doc)
	return nil
}

func (b *Budgets) RemoveCategory(ctx context.Context, uid, month, category string) error {
	return b.update(uid, month, func(doc *models.Budget) {
		delete(doc.Categories, category)
	})
}

func (b *Budgets) RemoveTotal(ctx context.Context, uid, month string) error {
	return b.update(uid, month, func(doc *models.Budget) {
		doc.Total = nil
	})
}

func (b *Budgets) SetCurrency(ctx context.Context, uid, month, currency string) error {
	return b.update(uid, month, func(doc *models.Budget) {
		doc.Currency = currency
	})
}

func (b *Budgets) Get(ctx context.Context, uid, month string) (*models.Budget, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	doc, ok := b.s.user(uid).budgets[month]
	if !ok {
		return nil, notFound("read", collBudgets+"/"+month)
	}
	out := doc.Clone()
	return &out, nil
}

func (b *Budgets) List(ctx context.Context, uid string) ([]models.Budget, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	docs := b.s.user(uid).budgets
	out := make([]models.Budget, 0, len(docs))
	for _, doc := range docs {
		out = append(out, doc.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (b *Budgets) Watch(ctx context.Context, uid, month string) (<-chan *models.Budget, <-chan error) {
	return watch(ctx, b.s, uid, collBudgets, func() *models.Budget {
		doc, ok := b.s.user(uid).budgets[month]
		if !ok {
			return nil
		}
		out := doc.Clone()
		return &out
	})
}

// update applies fn to an existing month document, failing with not-found
// like a Firestore Update.
func (b *Budgets) update(uid, month string, fn func(*models.Budget)) error {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()

	if err := b.s.beginWrite("update", collBudgets, month); err != nil {
		return err
	}
	if _, ok := b.s.user(uid).budgets[month]; !ok {
		return notFound("update", collBudgets+"/"+month)
	}
	doc := b.load(uid, month)
	fn(&doc)
	b.save(uid, doc)
	return nil
}

// load and save must be called with mu held.
func (b *Budgets) load(uid, month string) models.Budget {
	doc, ok := b.s.user(uid).budgets[month]
	if !ok {
		return models.Budget{Month: month, Categories: map[string]float64{}}
	}
	return doc.Clone()
}

func (b *Budgets) save(uid string, doc models.Budget) {
	doc.UpdatedAt = b.s.now()
	b.s.user(uid).budgets[doc.Month] = doc
	b.s.changed(uid, collBudgets)
}
