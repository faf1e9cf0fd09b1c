// FILE: internal/service/sync_service.go
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"voiceform-be/internal/config"
	"voiceform-be/internal/dto"
	"voiceform-be/internal/entity"
	"voiceform-be/internal/pkg/logger"
	"voiceform-be/internal/repository/contract"
)

// forwardedHeader marks a fallback request that already crossed instances
// once, so a stale route can never bounce an update around the cluster.
const forwardedHeader = "X-Form-Sync-Forwarded"

type ISyncService interface {
	// Sync routes a batch of field updates to wherever the session lives.
	// forwarded is true when the request already arrived over the fallback
	// path and must not be forwarded again.
	Sync(ctx context.Context, formId string, updates map[string]string, forwarded bool) (*dto.UpdateFieldsResponse, error)
}

// syncService prefers the in-process direct path: no network hop, and the
// apply + completion transition stay atomic under the session lock. The HTTP
// fallback exists only for sessions owned by another instance.
type syncService struct {
	sessions ISessionService
	dispatch IDispatchService
	routes   contract.RouteStore
	cfg      config.SyncConfig
	client   *http.Client
	logger   logger.ILogger
}

func NewSyncService(
	sessions ISessionService,
	dispatch IDispatchService,
	routes contract.RouteStore,
	cfg config.SyncConfig,
	log logger.ILogger,
) ISyncService {
	return &syncService{
		sessions: sessions,
		dispatch: dispatch,
		routes:   routes,
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.FallbackTimeout},
		logger:   log,
	}
}

func (s *syncService) Sync(ctx context.Context, formId string, updates map[string]string, forwarded bool) (*dto.UpdateFieldsResponse, error) {
	if s.sessions.Resident(formId) {
		return s.dispatch.Dispatch(ctx, formId, updates)
	}
	if forwarded {
		// We were named the owner but the session is gone (expired or reset
		// between route lookup and delivery).
		return nil, entity.ErrSessionNotFound
	}

	addr, err := s.routes.Locate(ctx, formId)
	if err != nil {
		if !errors.Is(err, contract.ErrRouteNotFound) {
			s.logger.Warn("SyncService", "Route lookup failed", map[string]interface{}{
				"form_id": formId, "error": err.Error(),
			})
		}
		return nil, entity.ErrSessionNotFound
	}
	if addr == s.cfg.InstanceAddr {
		// Stale route pointing back at us; the session no longer exists.
		return nil, entity.ErrSessionNotFound
	}

	resp, err := s.forward(ctx, addr, formId, updates)
	if err == nil {
		return resp, nil
	}
	if errors.Is(err, entity.ErrSessionNotFound) {
		return nil, entity.ErrSessionNotFound
	}

	// One retry on transport failure, then give up. To the caller a dead
	// owner and a missing session are indistinguishable.
	s.logger.Warn("SyncService", "Fallback sync failed, retrying once", map[string]interface{}{
		"form_id": formId, "addr": addr, "error": err.Error(),
	})
	resp, err = s.forward(ctx, addr, formId, updates)
	if err != nil {
		s.logger.Error("SyncService", "Fallback sync failed", map[string]interface{}{
			"form_id": formId, "addr": addr, "error": err.Error(),
		})
		return nil, entity.ErrSessionNotFound
	}
	return resp, nil
}

func (s *syncService) forward(ctx context.Context, addr, formId string, updates map[string]string) (*dto.UpdateFieldsResponse, error) {
	payload, err := json.Marshal(dto.UpdateFieldsRequest{FormId: formId, Updates: updates})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr+"/api/form/update_state", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(forwardedHeader, "1")

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, entity.ErrSessionNotFound
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fallback sync: unexpected status %d", res.StatusCode)
	}

	var out dto.UpdateFieldsResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForwardedHeader exposes the loop-guard header name to the HTTP layer.
func ForwardedHeader() string {
	return forwardedHeader
}
