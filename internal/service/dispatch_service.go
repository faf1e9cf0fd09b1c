// FILE: internal/service/dispatch_service.go
package service

import (
	"context"
	"sort"
	"time"

	"voiceform-be/internal/dto"
	"voiceform-be/internal/entity"
	"voiceform-be/internal/pkg/logger"
	"voiceform-be/pkg/events"
)

type IDispatchService interface {
	Dispatch(ctx context.Context, formId string, updates map[string]string) (*dto.UpdateFieldsResponse, error)
}

// dispatchService validates and applies batched field updates, whether they
// come from the agent's tool calls, a manual client edit, or a forwarded
// fallback request. Invalid field content is absorbed into the response's
// outcome buckets; only a missing session is an error.
type dispatchService struct {
	sessions  ISessionService
	publisher IPublisherService
	logger    logger.ILogger
}

func NewDispatchService(sessions ISessionService, publisher IPublisherService, log logger.ILogger) IDispatchService {
	return &dispatchService{
		sessions:  sessions,
		publisher: publisher,
		logger:    log,
	}
}

func (d *dispatchService) Dispatch(ctx context.Context, formId string, updates map[string]string) (*dto.UpdateFieldsResponse, error) {
	sess, err := d.sessions.Get(formId)
	if err != nil {
		return nil, err
	}

	resp := &dto.UpdateFieldsResponse{
		Applied:        make(map[string]string),
		IgnoredUnknown: []string{},
		IgnoredEmpty:   []string{},
		Truncated:      []string{},
	}

	sess.Lock()
	if !sess.Alive() {
		sess.Unlock()
		return nil, entity.ErrSessionNotFound
	}

	for name, raw := range updates {
		outcome, final := sess.State.Apply(name, raw)
		switch outcome {
		case entity.OutcomeApplied:
			resp.Applied[name] = final
		case entity.OutcomeTruncatedAndApplied:
			resp.Applied[name] = final
			resp.Truncated = append(resp.Truncated, name)
		case entity.OutcomeIgnoredUnknownField:
			resp.IgnoredUnknown = append(resp.IgnoredUnknown, name)
		case entity.OutcomeIgnoredEmptyValue:
			resp.IgnoredEmpty = append(resp.IgnoredEmpty, name)
		}
	}

	// The completion decision happens under the same lock as the writes that
	// caused it; that is what makes the notice one-shot under concurrency.
	completedNow := sess.State.Completed() && sess.Tracker.MarkCompleted()
	sess.State.Touch()
	resp.RemainingCount = sess.State.RemainingCount()
	resp.Complete = sess.State.Completed()
	resp.CatalogHash = sess.Schema.CatalogHash()
	sess.Unlock()

	sort.Strings(resp.IgnoredUnknown)
	sort.Strings(resp.IgnoredEmpty)
	sort.Strings(resp.Truncated)

	// Qualifying activity keeps the session routable, not just resident.
	d.sessions.RefreshRoute(ctx, formId)

	if len(resp.Applied) > 0 {
		d.publish(ctx, events.TypeFieldsApplied, formId, map[string]interface{}{
			"applied":   resp.Applied,
			"remaining": resp.RemainingCount,
		})
	}
	if completedNow {
		d.publish(ctx, events.TypeFormCompleted, formId, nil)
		d.logger.Info("DispatchService", "Form completed", map[string]interface{}{"form_id": formId})
	}
	return resp, nil
}

func (d *dispatchService) publish(ctx context.Context, eventType, formId string, extra map[string]interface{}) {
	data := map[string]interface{}{"form_id": formId}
	for k, v := range extra {
		data[k] = v
	}
	evt := events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	if err := d.publisher.Publish(ctx, evt); err != nil {
		d.logger.Warn("DispatchService", "Failed to publish event", map[string]interface{}{
			"event": eventType, "form_id": formId, "error": err.Error(),
		})
	}
}
