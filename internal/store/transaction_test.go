package store

import (
	"context"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
)

func emulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "test-project")
	if err != nil {
		t.Fatalf("firestore client: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestTransactionStoreWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	st := NewTransactionStore(client, taxonomy.Expense)
	uid := "user-" + uuid.NewString()

	jan := func(day int) time.Time { return time.Date(2025, time.January, day, 12, 0, 0, 0, time.UTC) }
	feb := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)
	for _, tx := range []models.Transaction{
		{Title: "Coffee", Amount: 3, Currency: "GHS", Category: "Food", Date: jan(10)},
		{Title: "Bus", Amount: 2, Currency: "GHS", Category: "Transport", Date: jan(2)},
		{Title: "Taxi", Amount: 8, Currency: "GHS", Category: "Transport", Date: feb.Add(-500 * time.Microsecond)},
		{Title: "Rent", Amount: 900, Currency: "GHS", Category: "Housing", Date: feb},
	} {
		if _, err := st.Add(ctx, uid, &tx); err != nil {
			t.Fatalf("add %s: %v", tx.Title, err)
		}
	}

	got, err := st.List(ctx, uid, &dto.DateWindow{From: jan(1).Truncate(24 * time.Hour), Until: feb})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 || got[0].Title != "Bus" || got[1].Title != "Coffee" || got[2].Title != "Taxi" {
		t.Fatalf("expected Bus, Coffee, Taxi; got %+v", got)
	}

	amount := 4.5
	if err := st.Update(ctx, uid, got[1].ID, dto.TransactionPatch{Amount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}
	updated, err := st.Get(ctx, uid, got[1].ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.Amount != 4.5 || updated.Title != "Coffee" {
		t.Fatalf("expected Coffee at 4.5, got %+v", updated)
	}

	if err := st.Delete(ctx, uid, got[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Delete(ctx, uid, got[0].ID); err != nil {
		t.Fatalf("deleting a missing id should succeed: %v", err)
	}

	err = st.Update(ctx, uid, "missing", dto.TransactionPatch{Amount: &amount})
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTransactionWatchWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := NewTransactionStore(client, taxonomy.Income)
	uid := "user-" + uuid.NewString()

	snaps, errCh := st.Watch(ctx, uid, nil)

	if first := <-snaps; len(first) != 0 {
		t.Fatalf("expected an empty first snapshot, got %v", first)
	}

	if _, err := st.Add(ctx, uid, &models.Transaction{Title: "Pay", Amount: 5000, Currency: "GHS", Category: "Salary", Date: time.Now()}); err != nil {
		t.Fatalf("add: %v", err)
	}

	select {
	case next := <-snaps:
		if len(next) != 1 || next[0].Title != "Pay" {
			t.Fatalf("expected Pay, got %+v", next)
		}
	case err := <-errCh:
		t.Fatalf("unexpected stream error: %v", err)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}

	cancel()
	for range snaps {
	}
	if err, ok := <-errCh; ok {
		t.Fatalf("expected no error after cancel, got %v", err)
	}
}

func TestBudgetStoreWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	st := NewBudgetStore(client)
	uid := "user-" + uuid.NewString()
	month := "2025-01"
	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

	for _, err := range []error{
		st.SetCategory(ctx, uid, month, dto.CategoryBudgetWrite{
			Category: "Food", Amount: 500, Currency: "GHS", Period: "Monthly", StartDate: start,
		}),
		st.SetCategory(ctx, uid, month, dto.CategoryBudgetWrite{
			Category: "Transport", Amount: 200, Currency: "GHS", Period: "Monthly", StartDate: start,
		}),
		st.SetTotal(ctx, uid, month, 2000, "GHS"),
	} {
		if err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	b, err := st.Get(ctx, uid, month)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(b.Categories) != 2 || b.Categories["Food"] != 500 || b.Categories["Transport"] != 200 {
		t.Fatalf("unexpected categories %v", b.Categories)
	}
	if b.TotalAmount() != 2000 {
		t.Fatalf("expected total 2000, got %v", b.TotalAmount())
	}

	if err := st.RemoveCategory(ctx, uid, month, "Food"); err != nil {
		t.Fatalf("remove category: %v", err)
	}
	if err := st.RemoveTotal(ctx, uid, month); err != nil {
		t.Fatalf("remove total: %v", err)
	}

	b, err = st.Get(ctx, uid, month)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(b.Categories) != 1 || b.Categories["Transport"] != 200 {
		t.Fatalf("expected only Transport, got %v", b.Categories)
	}
	if b.Total != nil {
		t.Fatalf("expected total removed, got %v", *b.Total)
	}

	if _, err := st.Get(ctx, uid, "1999-01"); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSettingsStoreWithEmulator(t *testing.T) {
	client := emulatorClient(t)
	ctx := context.Background()
	st := NewSettingsStore(client)
	uid := "user-" + uuid.NewString()

	if _, err := st.Get(ctx, uid); !errs.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	if err := st.SetDefaultCurrency(ctx, uid, "USD"); err != nil {
		t.Fatalf("set currency: %v", err)
	}
	got, err := st.Get(ctx, uid)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.DefaultCurrency != "USD" {
		t.Fatalf("expected USD, got %s", got.DefaultCurrency)
	}
}
