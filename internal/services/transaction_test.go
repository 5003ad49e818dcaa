package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/store/memstore"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
	"github.com/GregMSThompson/finance-sync/pkg/helpers"
)

func TestAddFillsDefaultCurrencyFromSettings(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()

	if _, err := f.settings.SetDefaultCurrency(ctx, "u1", "USD"); err != nil {
		t.Fatalf("set currency: %v", err)
	}
	date := time.Date(2025, time.August, 3, 0, 0, 0, 0, time.UTC)
	id, err := f.expenses.Add(ctx, "u1", dto.TransactionInput{Title: "X", Amount: 10, Date: &date})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	got := mustGet(f, "u1", id)
	if got.Currency != "USD" {
		t.Fatalf("expected USD, got %q", got.Currency)
	}
	if got.Category != taxonomy.CategoryOther {
		t.Fatalf("expected category Other, got %q", got.Category)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected createdAt to be stamped")
	}
}

func TestAddWithoutSettingsUsesGHS(t *testing.T) {
	f := newFixture()
	date := time.Now()
	id, err := f.expenses.Add(helpers.TestCtx(), "u1", dto.TransactionInput{Title: "X", Amount: 1, Date: &date})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := mustGet(f, "u1", id).Currency; got != "GHS" {
		t.Fatalf("expected GHS, got %q", got)
	}
}

func TestAddValidationFailsBeforeAnyWrite(t *testing.T) {
	date := time.Now()
	cases := []struct {
		name  string
		uid   string
		in    dto.TransactionInput
		field string
	}{
		{name: "missing date", uid: "u1", in: dto.TransactionInput{Title: "X", Amount: 10}, field: "date"},
		{name: "missing user", uid: "", in: dto.TransactionInput{Title: "X", Amount: 10, Date: &date}, field: "userId"},
		{name: "blank title", uid: "u1", in: dto.TransactionInput{Title: "  ", Amount: 10, Date: &date}, field: "title"},
		{name: "negative amount", uid: "u1", in: dto.TransactionInput{Title: "X", Amount: -1, Date: &date}, field: "amount"},
		{name: "bad currency", uid: "u1", in: dto.TransactionInput{Title: "X", Amount: 1, Date: &date, Currency: helpers.Ptr("JPY")}, field: "currency"},
		{name: "bad category", uid: "u1", in: dto.TransactionInput{Title: "X", Amount: 1, Date: &date, Category: helpers.Ptr("Salary")}, field: "category"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mem := memstore.New()
			defaults := &stubDefaults{currency: "GHS"}
			repo := NewTransactionRepository(taxonomy.Expense, mem.Transactions(taxonomy.Expense), defaults, time.UTC, nil)

			_, err := repo.Add(helpers.TestCtx(), tc.uid, tc.in)
			var vErr *errs.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, vErr.Field)
			}
			if mem.Writes() != 0 {
				t.Fatalf("expected no writes, got %d", mem.Writes())
			}
		})
	}
}

func TestAddMissingDateSkipsSettingsLookup(t *testing.T) {
	defaults := &stubDefaults{currency: "GHS"}
	repo := NewTransactionRepository(taxonomy.Expense, memstore.New().Transactions(taxonomy.Expense), defaults, time.UTC, nil)

	_, _ = repo.Add(helpers.TestCtx(), "u1", dto.TransactionInput{Title: "X", Amount: 10})
	if defaults.calls != 0 {
		t.Fatalf("expected no settings read, got %d", defaults.calls)
	}
}

func TestAddPropagatesDefaultsError(t *testing.T) {
	boom := errors.New("settings unavailable")
	repo := NewTransactionRepository(taxonomy.Income, memstore.New().Transactions(taxonomy.Income), &stubDefaults{err: boom}, time.UTC, nil)
	date := time.Now()

	_, err := repo.Add(helpers.TestCtx(), "u1", dto.TransactionInput{Title: "Pay", Amount: 1, Date: &date})
	if !errors.Is(err, boom) {
		t.Fatalf("expected settings error, got %v", err)
	}
}

func TestUpdateReappliesDefaultCurrency(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()
	date := time.Now()

	id, err := f.expenses.Add(ctx, "u1", dto.TransactionInput{Title: "X", Amount: 10, Date: &date, Currency: helpers.Ptr("EUR")})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := f.mem.Settings().SetDefaultCurrency(ctx, "u1", "GBP"); err != nil {
		t.Fatalf("settings: %v", err)
	}

	if err := f.expenses.Update(ctx, "u1", id, dto.TransactionPatch{Amount: helpers.Ptr(12.5)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got := mustGet(f, "u1", id)
	if got.Currency != "GBP" || got.Amount != 12.5 || got.Title != "X" {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestUpdateRequiresIdentifiers(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()

	var vErr *errs.ValidationError
	if err := f.expenses.Update(ctx, "", "id", dto.TransactionPatch{}); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for missing uid, got %v", err)
	}
	if err := f.expenses.Update(ctx, "u1", "", dto.TransactionPatch{}); !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError for missing id, got %v", err)
	}
	if f.mem.Writes() != 0 {
		t.Fatalf("expected no writes, got %d", f.mem.Writes())
	}
}

func TestUpdateMissingRecordIsNotFound(t *testing.T) {
	f := newFixture()
	err := f.expenses.Update(helpers.TestCtx(), "u1", "missing", dto.TransactionPatch{Title: helpers.Ptr("x")})
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestDeleteTwiceLeavesOthersIntact(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()
	date := time.Now()

	keep, _ := f.expenses.Add(ctx, "u1", dto.TransactionInput{Title: "keep", Amount: 1, Date: &date})
	gone, _ := f.expenses.Add(ctx, "u1", dto.TransactionInput{Title: "gone", Amount: 2, Date: &date})

	if err := f.expenses.Delete(ctx, "u1", gone); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := f.expenses.Delete(ctx, "u1", gone); err != nil && !errs.IsNotFound(err) {
		t.Fatalf("second delete: %v", err)
	}

	all, err := f.expenses.ListByMonth(ctx, "u1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].ID != keep {
		t.Fatalf("expected only %s to remain, got %+v", keep, all)
	}
}

func TestListByMonthWindowBoundaries(t *testing.T) {
	f := newFixture()
	ctx := helpers.TestCtx()

	endOfAugust := time.Date(2025, time.August, 31, 23, 59, 59, int(999*time.Millisecond), time.UTC)
	dates := map[string]time.Time{
		"start":     time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		"middle":    time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC),
		"end":       endOfAugust,
		"lastTick":  endOfAugust.Add(500 * time.Microsecond),
		"nextMonth": time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC),
		"before":    time.Date(2025, time.July, 31, 23, 59, 59, 0, time.UTC),
	}
	for title, d := range dates {
		if _, err := f.expenses.Add(ctx, "u1", dto.TransactionInput{Title: title, Amount: 1, Date: &d}); err != nil {
			t.Fatalf("add %s: %v", title, err)
		}
	}

	got, err := f.expenses.ListByMonth(ctx, "u1", "2025-08")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var titles []string
	for _, tx := range got {
		titles = append(titles, tx.Title)
	}
	want := []string{"start", "middle", "end", "lastTick"}
	if len(titles) != len(want) {
		t.Fatalf("expected %v, got %v", want, titles)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, titles)
		}
	}

	september, err := f.expenses.ListByMonth(ctx, "u1", "2025-09")
	if err != nil {
		t.Fatalf("list september: %v", err)
	}
	if len(september) != 1 || september[0].Title != "nextMonth" {
		t.Fatalf("expected only nextMonth in 2025-09, got %+v", september)
	}
}

func TestQueryByMonthRejectsBadMonth(t *testing.T) {
	f := newFixture()
	_, _, err := f.expenses.QueryByMonth(helpers.TestCtx(), "u1", "2025-13")
	var vErr *errs.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestQueryByMonthStreamsSnapshots(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(helpers.TestCtx())
	defer cancel()

	snaps, _, err := f.income.QueryByMonth(ctx, "u1", "2025-09")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if first := <-snaps; len(first) != 0 {
		t.Fatalf("expected empty initial snapshot, got %d", len(first))
	}

	date := time.Date(2025, time.September, 5, 0, 0, 0, 0, time.UTC)
	if _, err := f.income.Add(ctx, "u1", dto.TransactionInput{Title: "Pay", Amount: 900, Date: &date, Category: helpers.Ptr("Salary")}); err != nil {
		t.Fatalf("add: %v", err)
	}

	var next []models.Transaction
	select {
	case next = <-snaps:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	if len(next) != 1 || next[0].Category != "Salary" {
		t.Fatalf("unexpected snapshot: %+v", next)
	}
}
