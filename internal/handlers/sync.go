package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/olahol/melody"

	"github.com/GregMSThompson/finance-sync/internal/dto"
	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/metrics"
	"github.com/GregMSThompson/finance-sync/internal/middleware"
	"github.com/GregMSThompson/finance-sync/internal/period"
	"github.com/GregMSThompson/finance-sync/internal/realtime"
	"github.com/GregMSThompson/finance-sync/internal/response"
	"github.com/GregMSThompson/finance-sync/internal/state"
	"github.com/GregMSThompson/finance-sync/pkg/logger"
)

const (
	keyUID     = "uid"
	keyMonth   = "month"
	keySession = "session"
)

// syncHandlers pushes a live state container to each websocket client. Every
// connection owns its own container and subscriptions.
type syncHandlers struct {
	ResponseHandler response.ResponseHandler
	Controller      SyncController
	Repos           state.Repositories
	Metrics         *metrics.Metrics
	M               *melody.Melody
}

func NewSyncHandlers(deps *Deps, m *metrics.Metrics) *syncHandlers {
	mel := melody.New()
	mel.Config.MaxMessageSize = 4096
	mel.Config.PingPeriod = 30 * time.Second
	mel.Config.PongWait = 60 * time.Second

	h := &syncHandlers{
		ResponseHandler: deps.ResponseHandler,
		Controller:      deps.Sync,
		Repos: state.Repositories{
			Expenses: deps.ExpenseSvc,
			Income:   deps.IncomeSvc,
			Budgets:  deps.BudgetSvc,
			Settings: deps.SettingsSvc,
		},
		Metrics: m,
		M:       mel,
	}

	mel.HandleConnect(h.onConnect)
	mel.HandleDisconnect(h.onDisconnect)
	mel.HandleMessage(h.onMessage)
	mel.HandleError(func(s *melody.Session, err error) {
		sessionLogger(s).Warn("websocket error", "error", err)
	})
	return h
}

// Sync upgrades the request. ?month=YYYY-MM scopes transactions and budget to
// that month; without it every record is followed.
func (h *syncHandlers) Sync(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if uid == "" {
		h.ResponseHandler.HandleError(w, r, errs.Required("userId"))
		return
	}
	month := r.URL.Query().Get("month")
	if month != "" {
		if err := period.Validate(month); err != nil {
			h.ResponseHandler.HandleError(w, r, err)
			return
		}
	}

	keys := map[string]any{keyUID: uid, keyMonth: month}
	if err := h.M.HandleRequestWithKeys(w, r, keys); err != nil {
		logger.FromContext(r.Context()).Warn("websocket upgrade failed", "error", err)
	}
}

// Close disconnects every client.
func (h *syncHandlers) Close() error {
	return h.M.Close()
}

type syncSession struct {
	h         *syncHandlers
	s         *melody.Session
	ctx       context.Context
	uid       string
	container *state.Container
	stop      func()

	mu       sync.Mutex
	closed   bool
	settings *realtime.Subscription
	month    *realtime.Subscription
}

func (h *syncHandlers) onConnect(s *melody.Session) {
	uid := s.MustGet(keyUID).(string)
	month, _ := s.MustGet(keyMonth).(string)

	// Subscriptions end on disconnect, not when the upgrade request returns.
	log, ctx := logger.With(context.WithoutCancel(s.Request.Context()), "session", uuid.NewString())

	ss := &syncSession{
		h:         h,
		s:         s,
		ctx:       ctx,
		uid:       uid,
		container: state.New(h.Repos),
	}
	s.Set(keySession, ss)
	ss.stop = ss.container.Observe(ss.pushSnapshot)
	h.Metrics.SessionOpened()

	settings, err := h.Controller.SubscribeSettings(ctx, uid, ss.container)
	if err != nil {
		ss.pushError(err)
		_ = s.Close()
		return
	}
	ss.mu.Lock()
	ss.settings = settings
	ss.mu.Unlock()
	go ss.forward(settings)

	if err := ss.follow(month); err != nil {
		ss.pushError(err)
		_ = s.Close()
		return
	}
	log.Info("sync session opened", "month", month)
}

func (h *syncHandlers) onDisconnect(s *melody.Session) {
	ss, ok := session(s)
	if !ok {
		return
	}
	ss.close()
	h.Metrics.SessionClosed()
	sessionLogger(s).Info("sync session closed")
}

// onMessage moves the session to the month named in a dto.SyncRequest.
func (h *syncHandlers) onMessage(s *melody.Session, msg []byte) {
	ss, ok := session(s)
	if !ok {
		return
	}
	var req dto.SyncRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		ss.pushError(errs.NewValidationError("body", "invalid sync request: "+err.Error()))
		return
	}
	if err := ss.follow(req.Month); err != nil {
		ss.pushError(err)
	}
}

// follow cancels the current month subscription before opening the next.
func (ss *syncSession) follow(month string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return nil
	}
	if month != "" {
		if err := period.Validate(month); err != nil {
			return err
		}
	}
	if ss.month != nil {
		ss.month.Cancel()
		ss.month = nil
	}
	sub, err := ss.h.Controller.Subscribe(ss.ctx, ss.uid, month, ss.container)
	if err != nil {
		return err
	}
	ss.month = sub
	go ss.forward(sub)
	return nil
}

func (ss *syncSession) close() {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.closed {
		return
	}
	ss.closed = true
	if ss.month != nil {
		ss.month.Cancel()
	}
	if ss.settings != nil {
		ss.settings.Cancel()
	}
	ss.stop()
}

// forward relays stream failures until sub is cancelled.
func (ss *syncSession) forward(sub *realtime.Subscription) {
	for err := range sub.Errors() {
		ss.pushError(err)
	}
}

func (ss *syncSession) pushSnapshot(snap dto.Snapshot) {
	ss.write(dto.SyncMessage{Type: dto.SyncMessageSnapshot, Data: &snap})
}

func (ss *syncSession) pushError(err error) {
	msg := dto.SyncMessage{Type: dto.SyncMessageError, Error: err.Error()}
	var streamErr *errs.StreamError
	if errors.As(err, &streamErr) {
		msg.Stream = streamErr.Stream
	}
	logger.FromContext(ss.ctx).Warn("sync error pushed to client", "error", err)
	ss.write(msg)
}

func (ss *syncSession) write(msg dto.SyncMessage) {
	b, err := json.Marshal(msg)
	if err != nil {
		logger.FromContext(ss.ctx).Error("failed to encode sync message", "error", err)
		return
	}
	if err := ss.s.Write(b); err != nil && !errors.Is(err, melody.ErrSessionClosed) {
		logger.FromContext(ss.ctx).Warn("failed to write sync message", "error", err)
	}
}

func session(s *melody.Session) (*syncSession, bool) {
	v, ok := s.Get(keySession)
	if !ok {
		return nil, false
	}
	ss, ok := v.(*syncSession)
	return ss, ok
}

func sessionLogger(s *melody.Session) *slog.Logger {
	if ss, ok := session(s); ok {
		return logger.FromContext(ss.ctx)
	}
	return logger.FromContext(s.Request.Context())
}
