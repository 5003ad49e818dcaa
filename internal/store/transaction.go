package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
)

// transactionStore persists one transaction collection (expenses or income)
// under users/{uid}/{entity}.
type transactionStore struct {
	client *firestore.Client
	entity taxonomy.Entity
}

func NewTransactionStore(client *firestore.Client, entity taxonomy.Entity) *transactionStore {
	return &transactionStore{client: client, entity: entity}
}

func (s *transactionStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection(string(s.entity))
}

func (s *transactionStore) Add(ctx context.Context, uid string, tx *models.Transaction) (string, error) {
	ref, _, err := s.collection(uid).Add(ctx, map[string]any{
		"title":     tx.Title,
		"amount":    tx.Amount,
		"currency":  tx.Currency,
		"category":  tx.Category,
		"date":      tx.Date,
		"createdAt": firestore.ServerTimestamp,
	})
	if err != nil {
		return "", errs.FromStatus("create", "failed to add "+s.noun(), err)
	}
	return ref.ID, nil
}

func (s *transactionStore) Update(ctx context.Context, uid, id string, patch dto.TransactionPatch) error {
	updates := make([]firestore.Update, 0, 6)
	if patch.Title != nil {
		updates = append(updates, firestore.Update{Path: "title", Value: *patch.Title})
	}
	if patch.Amount != nil {
		updates = append(updates, firestore.Update{Path: "amount", Value: *patch.Amount})
	}
	if patch.Currency != nil {
		updates = append(updates, firestore.Update{Path: "currency", Value: *patch.Currency})
	}
	if patch.Category != nil {
		updates = append(updates, firestore.Update{Path: "category", Value: *patch.Category})
	}
	if patch.Date != nil {
		updates = append(updates, firestore.Update{Path: "date", Value: *patch.Date})
	}
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})

	if _, err := s.collection(uid).Doc(id).Update(ctx, updates); err != nil {
		return errs.FromStatus("update", "failed to update "+s.noun()+" "+id, err)
	}
	return nil
}

func (s *transactionStore) SetCurrency(ctx context.Context, uid, id, currency string) error {
	cur := currency
	return s.Update(ctx, uid, id, dto.TransactionPatch{Currency: &cur})
}

// Delete has no existence precondition, so deleting a missing id succeeds.
func (s *transactionStore) Delete(ctx context.Context, uid, id string) error {
	if _, err := s.collection(uid).Doc(id).Delete(ctx); err != nil {
		return errs.FromStatus("delete", "failed to delete "+s.noun()+" "+id, err)
	}
	return nil
}

func (s *transactionStore) Get(ctx context.Context, uid, id string) (*models.Transaction, error) {
	doc, err := s.collection(uid).Doc(id).Get(ctx)
	if err != nil {
		return nil, errs.FromStatus("read", s.noun()+" "+id+" not found", err)
	}
	tx, err := decodeTransaction(doc)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *transactionStore) List(ctx context.Context, uid string, window *dto.DateWindow) ([]models.Transaction, error) {
	iter := s.query(uid, window).Documents(ctx)
	defer iter.Stop()

	var out []models.Transaction
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errs.FromStatus("read", "failed to list "+string(s.entity), err)
		}
		tx, err := decodeTransaction(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *transactionStore) Watch(ctx context.Context, uid string, window *dto.DateWindow) (<-chan []models.Transaction, <-chan error) {
	return watchQuery(ctx, s.query(uid, window), decodeTransaction)
}

// query orders by the user-chosen date; a nil window selects every record.
func (s *transactionStore) query(uid string, window *dto.DateWindow) firestore.Query {
	q := s.collection(uid).Query
	if window != nil {
		q = q.Where("date", ">=", window.From).Where("date", "<", window.Until)
	}
	return q.OrderBy("date", firestore.Asc)
}

func (s *transactionStore) noun() string {
	if s.entity == taxonomy.Income {
		return "income"
	}
	return "expense"
}

func decodeTransaction(doc *firestore.DocumentSnapshot) (models.Transaction, error) {
	var tx models.Transaction
	if err := doc.DataTo(&tx); err != nil {
		return tx, errs.NewRemoteOperationError(errs.KindUnknown, "read", "failed to parse transaction "+doc.Ref.ID, err)
	}
	tx.ID = doc.Ref.ID
	return tx, nil
}
