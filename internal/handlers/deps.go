package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/realtime"
	"github.com/GregMSThompson/finance-sync/internal/response"
)

type TransactionService interface {
	Add(ctx context.Context, uid string, in dto.TransactionInput) (string, error)
	Update(ctx context.Context, uid, id string, patch dto.TransactionPatch) error
	Delete(ctx context.Context, uid, id string) error
	Get(ctx context.Context, uid, id string) (*models.Transaction, error)
	ListByMonth(ctx context.Context, uid, month string) ([]models.Transaction, error)
}

type BudgetService interface {
	SetCategoryBudget(ctx context.Context, uid, month, category string, req dto.CategoryBudgetRequest) error
	SetTotalBudget(ctx context.Context, uid, month string, req dto.TotalBudgetRequest) error
	RemoveCategoryBudget(ctx context.Context, uid, month, category string) error
	RemoveTotalBudget(ctx context.Context, uid, month string) error
	GetMonth(ctx context.Context, uid, month string) (models.Budget, error)
	ListMonths(ctx context.Context, uid string) ([]models.Budget, error)
}

type SettingsService interface {
	Get(ctx context.Context, uid string) (models.Settings, error)
	SetDefaultCurrency(ctx context.Context, uid, currency string) (dto.PropagationResult, error)
}

type ReportService interface {
	MonthReport(ctx context.Context, uid, month string) (dto.MonthReport, error)
}

type SyncController interface {
	Subscribe(ctx context.Context, uid, month string, sink realtime.Sink) (*realtime.Subscription, error)
	SubscribeSettings(ctx context.Context, uid string, sink realtime.Sink) (*realtime.Subscription, error)
}

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	ExpenseSvc      TransactionService
	IncomeSvc       TransactionService
	BudgetSvc       BudgetService
	SettingsSvc     SettingsService
	ReportSvc       ReportService
	Sync            SyncController
	Location        *time.Location
}
