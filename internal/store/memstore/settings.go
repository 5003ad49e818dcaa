package memstore

import (
	"context"

	"github.com/GregMSThompson/finance-sync/internal/models"
)

type Settings struct {
	s *Store
}

func (st *Settings) Get(ctx context.Context, uid string) (*models.Settings, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	cur := st.s.user(uid).settings
	if cur == nil {
		return nil, notFound("read", collSettings)
	}
	out := *cur
	return &out, nil
}

func (st *Settings) SetDefaultCurrency(ctx context.Context, uid, currency string) error {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	if err := st.s.beginWrite("set", collSettings, ""); err != nil {
		return err
	}
	st.s.user(uid).settings = &models.Settings{DefaultCurrency: currency, UpdatedAt: st.s.now()}
	st.s.changed(uid, collSettings)
	return nil
}

func (st *Settings) Watch(ctx context.Context, uid string) (<-chan *models.Settings, <-chan error) {
	return watch(ctx, st.s, uid, collSettings, func() *models.Settings {
		cur := st.s.user(uid).settings
		if cur == nil {
			return nil
		}
		out := *cur
		return &out
	})
}
