package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/models"
)

// budgetStore keeps one document per month at users/{uid}/budgets/{YYYY-MM}.
type budgetStore struct {
	client *firestore.Client
}

func NewBudgetStore(client *firestore.Client) *budgetStore {
	return &budgetStore{client: client}
}

func (s *budgetStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("budgets")
}

// SetCategory merges a single category ceiling into the month document,
// creating it if needed. Sibling categories and the total are left alone.
func (s *budgetStore) SetCategory(ctx context.Context, uid, month string, w dto.CategoryBudgetWrite) error {
	data := map[string]any{
		"categories": map[string]any{w.Category: w.Amount},
		"currency":   w.Currency,
		"period":     w.Period,
		"startDate":  w.StartDate,
		"updatedAt":  firestore.ServerTimestamp,
	}
	if _, err := s.collection(uid).Doc(month).Set(ctx, data, firestore.MergeAll); err != nil {
		return errs.FromStatus("set", "failed to set budget for "+w.Category, err)
	}
	return nil
}

func (s *budgetStore) SetTotal(ctx context.Context, uid, month string, amount float64, currency string) error {
	data := map[string]any{
		"total":     amount,
		"currency":  currency,
		"updatedAt": firestore.ServerTimestamp,
	}
	if _, err := s.collection(uid).Doc(month).Set(ctx, data, firestore.MergeAll); err != nil {
		return errs.FromStatus("set", "failed to set total budget for "+month, err)
	}
	return nil
}

// RemoveCategory deletes one key from the categories map. A FieldPath is
// used so category names are never parsed as dotted paths.
func (s *budgetStore) RemoveCategory(ctx context.Context, uid, month, category string) error {
	_, err := s.collection(uid).Doc(month).Update(ctx, []firestore.Update{
		{FieldPath: firestore.FieldPath{"categories", category}, Value: firestore.Delete},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return errs.FromStatus("update", "failed to remove budget for "+category, err)
	}
	return nil
}

func (s *budgetStore) RemoveTotal(ctx context.Context, uid, month string) error {
	_, err := s.collection(uid).Doc(month).Update(ctx, []firestore.Update{
		{Path: "total", Value: firestore.Delete},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return errs.FromStatus("update", "failed to remove total budget for "+month, err)
	}
	return nil
}

func (s *budgetStore) SetCurrency(ctx context.Context, uid, month, currency string) error {
	_, err := s.collection(uid).Doc(month).Update(ctx, []firestore.Update{
		{Path: "currency", Value: currency},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return errs.FromStatus("update", "failed to update currency of budget "+month, err)
	}
	return nil
}

func (s *budgetStore) Get(ctx context.Context, uid, month string) (*models.Budget, error) {
	doc, err := s.collection(uid).Doc(month).Get(ctx)
	if err != nil {
		return nil, errs.FromStatus("read", "budget "+month+" not found", err)
	}
	return decodeBudget(doc)
}

func (s *budgetStore) List(ctx context.Context, uid string) ([]models.Budget, error) {
	iter := s.collection(uid).Documents(ctx)
	defer iter.Stop()

	var out []models.Budget
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.FromStatus("read", "failed to list budgets", err)
		}
		b, err := decodeBudget(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, nil
}

// Watch streams the month document. A missing document is delivered as nil.
func (s *budgetStore) Watch(ctx context.Context, uid, month string) (<-chan *models.Budget, <-chan error) {
	return watchDoc(ctx, s.collection(uid).Doc(month), decodeBudget)
}

func decodeBudget(doc *firestore.DocumentSnapshot) (*models.Budget, error) {
	var b models.Budget
	if err := doc.DataTo(&b); err != nil {
		return nil, errs.NewRemoteOperationError(errs.KindUnknown, "read", "failed to parse budget "+doc.Ref.ID, err)
	}
	b.Month = doc.Ref.ID
	if b.Categories == nil {
		b.Categories = map[string]float64{}
	}
	return &b, nil
}
