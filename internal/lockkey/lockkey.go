package lockkey

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/attribution-io/ledger-core/internal/domain"
)

// Key addresses PostgreSQL's two-key advisory lock space: pg_try_advisory_xact_lock(int4, int4).
// ViewKey depends on the view name only; ScopeKey depends on the (view, tenant token) pair.
type Key struct {
	ViewKey  int32
	ScopeKey int32
}

// Derive computes the lock key for a view and tenant token.
// The token is a tenant identifier or domain.GlobalTenantToken.
func Derive(viewName, tenantToken string) Key {
	return Key{
		ViewKey:  hash32(canonicalView(viewName)),
		ScopeKey: hash32(canonicalScope(viewName, tenantToken)),
	}
}

// ForView computes the lock key for a view and an optional tenant
func ForView(viewName string, tenantID *uuid.UUID) Key {
	return Derive(viewName, domain.TenantToken(tenantID))
}

// Int64 returns both subkeys packed into one bigint, view key in the high half
func (k Key) Int64() int64 {
	return int64(k.ViewKey)<<32 | int64(uint32(k.ScopeKey))
}

// String returns the key in "view/scope" form for logging
func (k Key) String() string {
	return fmt.Sprintf("%d/%d", k.ViewKey, k.ScopeKey)
}

func canonicalView(viewName string) string {
	return "view:" + viewName
}

func canonicalScope(viewName, tenantToken string) string {
	return "scope:" + viewName + "|" + tenantToken
}

// hash32 truncates the 64-bit digest to its low 32 bits, reinterpreted as signed
func hash32(s string) int32 {
	return int32(uint32(xxhash.Sum64String(s))) //nolint:gosec
}
