package bootstrap

import (
	"context"
	"log/slog"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/finance-sync/internal/config"
	"github.com/GregMSThompson/finance-sync/internal/metrics"
	"github.com/GregMSThompson/finance-sync/pkg/logger"
)

type Bootstrap struct {
	Log       *slog.Logger
	Firestore *firestore.Client
	Firebase  *auth.Client
	Metrics   *metrics.Metrics
}

// Run connects the API server's backing services.
func Run(cfg *config.Config) (*Bootstrap, error) {
	bs, err := RunStore(cfg, logger.NewCloudRunHandler)
	if err != nil {
		return bs, err
	}

	bs.Firebase, err = InitFirebase(context.Background(), cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	return bs, nil
}

// RunStore is Run without the auth client, for tools that act as a known
// user instead of verifying tokens.
func RunStore(cfg *config.Config, handler logger.HandlerFunc) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, handler)
	bs.Metrics = metrics.New()
	if cfg.EmulatorHost != "" {
		bs.Log.Info("using firestore emulator", "host", cfg.EmulatorHost)
	}

	bs.Firestore, err = InitFirestore(applicationCtx, cfg.ProjectID)
	if err != nil {
		return bs, err
	}
	return bs, nil
}

func (bs *Bootstrap) Close() {
	if bs.Firestore != nil {
		if err := bs.Firestore.Close(); err != nil {
			bs.Log.Warn("failed to close firestore client", "error", err)
		}
	}
}
