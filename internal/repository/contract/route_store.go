// FILE: internal/repository/contract/route_store.go
package contract

import (
	"context"
	"errors"
)

var ErrRouteNotFound = errors.New("route not found")

// RouteStore is the routing table that tells the sync layer which instance
// owns a session. Instances register their own sessions on create and forget
// them on destroy; Locate answers "who do I forward this update to".
type RouteStore interface {
	Register(ctx context.Context, formId, instanceAddr string) error
	Locate(ctx context.Context, formId string) (string, error)
	Forget(ctx context.Context, formId string) error
}
