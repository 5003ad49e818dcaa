package store

import (
	"context"

	"cloud.google.com/go/firestore"

	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/models"
)

const settingsDocID = "preferences"

type settingsStore struct {
	client *firestore.Client
}

func NewSettingsStore(client *firestore.Client) *settingsStore {
	return &settingsStore{client: client}
}

func (s *settingsStore) doc(uid string) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(uid).Collection("settings").Doc(settingsDocID)
}

func (s *settingsStore) Get(ctx context.Context, uid string) (*models.Settings, error) {
	doc, err := s.doc(uid).Get(ctx)
	if err != nil {
		return nil, errs.FromStatus("read", "settings not found", err)
	}
	return decodeSettings(doc)
}

func (s *settingsStore) SetDefaultCurrency(ctx context.Context, uid, currency string) error {
	_, err := s.doc(uid).Set(ctx, map[string]any{
		"defaultCurrency": currency,
		"updatedAt":       firestore.ServerTimestamp,
	}, firestore.MergeAll)
	if err != nil {
		return errs.FromStatus("set", "failed to save settings", err)
	}
	return nil
}

func (s *settingsStore) Watch(ctx context.Context, uid string) (<-chan *models.Settings, <-chan error) {
	return watchDoc(ctx, s.doc(uid), decodeSettings)
}

func decodeSettings(doc *firestore.DocumentSnapshot) (*models.Settings, error) {
	var st models.Settings
	if err := doc.DataTo(&st); err != nil {
		return nil, errs.NewRemoteOperationError(errs.KindUnknown, "read", "failed to parse settings", err)
	}
	return &st, nil
}
