// FILE: internal/service/session_service.go
package service

import (
	"context"
	"sync"
	"time"

	"voiceform-be/internal/config"
	"voiceform-be/internal/constant"
	"voiceform-be/internal/dto"
	"voiceform-be/internal/entity"
	"voiceform-be/internal/pkg/logger"
	"voiceform-be/internal/repository/contract"
	"voiceform-be/pkg/events"
	"voiceform-be/pkg/pdfform"

	"github.com/google/uuid"
)

type ISessionService interface {
	Create(ctx context.Context, extraction *pdfform.Extraction, document []byte) (*entity.Session, error)
	Get(formId string) (*entity.Session, error)
	Resident(formId string) bool
	Reset(ctx context.Context, formId string) error
	Confirm(ctx context.Context, formId string) error
	Snapshot(formId string) (*dto.StateSnapshot, error)
	Status(formId string) (*dto.StatusResponse, error)
	RefreshRoute(ctx context.Context, formId string)
	Download(ctx context.Context, formId string) ([]byte, error)
	Sweep(now time.Time) int
	StartSweeper(ctx context.Context)
	Count() int
}

// sessionService owns every live session on this instance. It is the only
// component allowed to destroy a session because time passed; everything else
// destroys only on explicit client action.
type sessionService struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
	timers   map[string]*time.Timer

	cfg          config.SessionConfig
	form         config.FormConfig
	instanceAddr string
	routes       contract.RouteStore
	publisher    IPublisherService
	filler       pdfform.Filler
	logger       logger.ILogger
}

func NewSessionService(
	cfg config.SessionConfig,
	form config.FormConfig,
	instanceAddr string,
	routes contract.RouteStore,
	publisher IPublisherService,
	filler pdfform.Filler,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		sessions:     make(map[string]*entity.Session),
		timers:       make(map[string]*time.Timer),
		cfg:          cfg,
		form:         form,
		instanceAddr: instanceAddr,
		routes:       routes,
		publisher:    publisher,
		filler:       filler,
		logger:       log,
	}
}

func (s *sessionService) Create(ctx context.Context, extraction *pdfform.Extraction, document []byte) (*entity.Session, error) {
	fields := make([]entity.FormField, len(extraction.Fields))
	for i, f := range extraction.Fields {
		fields[i] = entity.FormField{OriginalName: f.OriginalName, Label: f.Label}
	}

	schema, err := entity.NewFieldSchema(fields, s.form.MaxFields)
	if err != nil {
		return nil, err
	}

	sess := entity.NewSession(uuid.NewString(), schema, document, s.form.MaxValueLength)

	s.mu.Lock()
	s.sessions[sess.Id] = sess
	s.mu.Unlock()

	if err := s.routes.Register(ctx, sess.Id, s.instanceAddr); err != nil {
		s.logger.Warn("SessionService", "Failed to register session route", map[string]interface{}{
			"form_id": sess.Id, "error": err.Error(),
		})
	}

	s.publish(ctx, events.TypeSessionCreated, sess.Id, map[string]interface{}{
		"field_count": schema.Size(),
	})
	s.logger.Info("SessionService", "Session created", map[string]interface{}{
		"form_id": sess.Id, "field_count": schema.Size(),
	})
	return sess, nil
}

func (s *sessionService) Get(formId string) (*entity.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[formId]
	s.mu.RUnlock()
	if !ok {
		return nil, entity.ErrSessionNotFound
	}
	return sess, nil
}

func (s *sessionService) Resident(formId string) bool {
	s.mu.RLock()
	_, ok := s.sessions[formId]
	s.mu.RUnlock()
	return ok
}

func (s *sessionService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Reset destroys the session immediately on explicit client action.
func (s *sessionService) Reset(ctx context.Context, formId string) error {
	if !s.destroy(ctx, formId, events.TypeSessionReset) {
		return entity.ErrSessionNotFound
	}
	return nil
}

// Confirm drives AwaitingConfirmation -> Ready. The download-ready notice is
// published exactly once; after the grace interval the session is released.
func (s *sessionService) Confirm(ctx context.Context, formId string) error {
	sess, err := s.Get(formId)
	if err != nil {
		return err
	}

	sess.Lock()
	if !sess.Alive() {
		sess.Unlock()
		return entity.ErrSessionNotFound
	}
	fired, err := sess.Tracker.Confirm()
	if err == nil {
		sess.State.Touch()
	}
	sess.Unlock()

	if err != nil {
		return err
	}
	s.RefreshRoute(ctx, formId)
	if !fired {
		return nil
	}

	s.publish(ctx, events.TypeDownloadReady, formId, nil)
	s.scheduleRelease(formId)
	s.logger.Info("SessionService", "Session confirmed, download ready", map[string]interface{}{"form_id": formId})
	return nil
}

func (s *sessionService) scheduleRelease(formId string) {
	timer := time.AfterFunc(s.cfg.ReadyGrace, func() {
		s.destroy(context.Background(), formId, events.TypeSessionClosed)
	})
	s.mu.Lock()
	if old, ok := s.timers[formId]; ok {
		old.Stop()
	}
	s.timers[formId] = timer
	s.mu.Unlock()
}

func (s *sessionService) Snapshot(formId string) (*dto.StateSnapshot, error) {
	sess, err := s.Get(formId)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if !sess.Alive() {
		return nil, entity.ErrSessionNotFound
	}

	remaining := sess.State.Remaining()
	sample := remaining
	if len(sample) > constant.RemainingSampleSize {
		sample = sample[:constant.RemainingSampleSize]
	}
	return &dto.StateSnapshot{
		FormId:          formId,
		Fields:          sess.State.Filled(),
		Remaining:       remaining,
		RemainingCount:  len(remaining),
		FilledCount:     sess.Schema.Size() - len(remaining),
		RemainingSample: sample,
		Complete:        sess.State.Completed(),
		State:           string(sess.Tracker.State()),
		CatalogHash:     sess.Schema.CatalogHash(),
	}, nil
}

// Status answers the polling surface. Polling is not qualifying activity, so
// no timestamps are refreshed here.
func (s *sessionService) Status(formId string) (*dto.StatusResponse, error) {
	sess, err := s.Get(formId)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()
	if !sess.Alive() {
		return nil, entity.ErrSessionNotFound
	}
	return &dto.StatusResponse{
		Remaining: sess.State.Remaining(),
		Complete:  sess.State.Completed(),
	}, nil
}

// Download fills the original document with the collected values. It is gated
// on the confirmation handshake; successful downloads release the session.
func (s *sessionService) Download(ctx context.Context, formId string) ([]byte, error) {
	sess, err := s.Get(formId)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	if !sess.Alive() {
		sess.Unlock()
		return nil, entity.ErrSessionNotFound
	}
	switch sess.Tracker.State() {
	case entity.TrackerReady:
	case entity.TrackerAwaitingConfirmation:
		sess.Unlock()
		return nil, entity.ErrNotConfirmed
	default:
		sess.Unlock()
		return nil, entity.ErrFormIncomplete
	}

	// Map display names back to the raw AcroForm names for fill-back.
	values := make(map[string]string)
	for name, value := range sess.State.Filled() {
		if original, ok := sess.Schema.OriginalName(name); ok {
			values[original] = value
		}
	}
	document := sess.Document
	sess.Unlock()

	filled, err := s.filler.Fill(document, values)
	if err != nil {
		return nil, err
	}

	s.destroy(ctx, formId, events.TypeSessionClosed)
	return filled, nil
}

// Sweep destroys every session idle past the threshold. It is run on a fixed
// interval by StartSweeper. The expiry decision and the Kill happen under the
// same session lock, so an update racing the sweep either lands before the
// decision or fails with ErrSessionNotFound; it is never acknowledged and
// then thrown away.
func (s *sessionService) Sweep(now time.Time) int {
	s.mu.RLock()
	candidates := make([]*entity.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		candidates = append(candidates, sess)
	}
	s.mu.RUnlock()

	swept := 0
	for _, sess := range candidates {
		sess.Lock()
		expired := sess.Alive() && sess.IdleSince(now) > s.cfg.IdleTimeout
		if expired {
			sess.Kill()
		}
		sess.Unlock()
		if expired && s.destroy(context.Background(), sess.Id, events.TypeSessionExpired) {
			swept++
		}
	}
	if swept > 0 {
		s.logger.Info("SessionService", "Swept inactive sessions", map[string]interface{}{"count": swept})
	}
	return swept
}

func (s *sessionService) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.Sweep(now)
			}
		}
	}()
}

// RefreshRoute re-ups the session's route table entry to its full TTL.
// Called after qualifying activity so an actively used session stays routable
// for as long as it is alive.
func (s *sessionService) RefreshRoute(ctx context.Context, formId string) {
	if !s.Resident(formId) {
		return
	}
	if err := s.routes.Register(ctx, formId, s.instanceAddr); err != nil {
		s.logger.Warn("SessionService", "Failed to refresh session route", map[string]interface{}{
			"form_id": formId, "error": err.Error(),
		})
	}
}

// destroy removes the session from the registry, marks it dead under its own
// lock and forgets its route. Returns false if the id was already gone.
func (s *sessionService) destroy(ctx context.Context, formId, eventType string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[formId]
	if ok {
		delete(s.sessions, formId)
	}
	timer := s.timers[formId]
	delete(s.timers, formId)
	s.mu.Unlock()

	if !ok {
		return false
	}
	if timer != nil {
		timer.Stop()
	}

	sess.Lock()
	sess.Kill()
	sess.Unlock()

	if err := s.routes.Forget(ctx, formId); err != nil {
		s.logger.Warn("SessionService", "Failed to forget session route", map[string]interface{}{
			"form_id": formId, "error": err.Error(),
		})
	}

	s.publish(ctx, eventType, formId, nil)
	s.logger.Info("SessionService", "Session destroyed", map[string]interface{}{
		"form_id": formId, "reason": eventType,
	})
	return true
}

func (s *sessionService) publish(ctx context.Context, eventType, formId string, extra map[string]interface{}) {
	data := map[string]interface{}{"form_id": formId}
	for k, v := range extra {
		data[k] = v
	}
	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	// Event delivery is auxiliary; a full bus never fails the request.
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.Warn("SessionService", "Failed to publish event", map[string]interface{}{
			"event": eventType, "form_id": formId, "error": err.Error(),
		})
	}
}
