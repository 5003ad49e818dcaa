package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
)

// Transactions is one expense or income collection.
type Transactions struct {
	s      *Store
	entity taxonomy.Entity
}

func (t *Transactions) coll() string { return string(t.entity) }

func (t *Transactions) docs(uid string) map[string]models.Transaction {
	u := t.s.user(uid)
	if t.entity == taxonomy.Income {
		return u.income
	}
	return u.expenses
}

func (t *Transactions) Add(ctx context.Context, uid string, tx *models.Transaction) (string, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	id := uuid.NewString()
	if err := t.s.beginWrite("create", t.coll(), id); err != nil {
		return "", err
	}
	rec := *tx
	rec.ID = id
	rec.CreatedAt = t.s.now()
	rec.UpdatedAt = rec.CreatedAt
	t.docs(uid)[id] = rec
	t.s.changed(uid, t.coll())
	return id, nil
}

func (t *Transactions) Update(ctx context.Context, uid, id string, patch dto.TransactionPatch) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if err := t.s.beginWrite("update", t.coll(), id); err != nil {
		return err
	}
	docs := t.docs(uid)
	rec, ok := docs[id]
	if !ok {
		return notFound("update", t.coll()+"/"+id)
	}
	if patch.Title != nil {
		rec.Title = *patch.Title
	}
	if patch.Amount != nil {
		rec.Amount = *patch.Amount
	}
	if patch.Currency != nil {
		rec.Currency = *patch.Currency
	}
	if patch.Category != nil {
		rec.Category = *patch.Category
	}
	if patch.Date != nil {
		rec.Date = *patch.Date
	}
	rec.UpdatedAt = t.s.now()
	docs[id] = rec
	t.s.changed(uid, t.coll())
	return nil
}

func (t *Transactions) SetCurrency(ctx context.Context, uid, id, currency string) error {
	return t.Update(ctx, uid, id, dto.TransactionPatch{Currency: &currency})
}

// Delete succeeds for ids that do not exist, like a Firestore delete.
func (t *Transactions) Delete(ctx context.Context, uid, id string) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if err := t.s.beginWrite("delete", t.coll(), id); err != nil {
		return err
	}
	docs := t.docs(uid)
	if _, ok := docs[id]; !ok {
		return nil
	}
	delete(docs, id)
	t.s.changed(uid, t.coll())
	return nil
}

func (t *Transactions) Get(ctx context.Context, uid, id string) (*models.Transaction, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	rec, ok := t.docs(uid)[id]
	if !ok {
		return nil, notFound("read", t.coll()+"/"+id)
	}
	return &rec, nil
}

func (t *Transactions) List(ctx context.Context, uid string, window *dto.DateWindow) ([]models.Transaction, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.query(uid, window), nil
}

func (t *Transactions) Watch(ctx context.Context, uid string, window *dto.DateWindow) (<-chan []models.Transaction, <-chan error) {
	return watch(ctx, t.s, uid, t.coll(), func() []models.Transaction {
		return t.query(uid, window)
	})
}

// query must be called with mu held.
func (t *Transactions) query(uid string, window *dto.DateWindow) []models.Transaction {
	out := make([]models.Transaction, 0)
	for _, rec := range t.docs(uid) {
		if window != nil && !window.Contains(rec.Date) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].ID < out[j].ID
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
