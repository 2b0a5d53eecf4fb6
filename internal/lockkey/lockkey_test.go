package lockkey

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/attribution-io/ledger-core/internal/domain"
)

func TestDerive_Deterministic(t *testing.T) {
	a := Derive("mv_channel_revenue", "GLOBAL")
	b := Derive("mv_channel_revenue", "GLOBAL")
	assert.Equal(t, a, b)
}

func TestDerive_ViewKeyIgnoresTenant(t *testing.T) {
	t1 := Derive("rpt_tenant_channel_totals", uuid.New().String())
	t2 := Derive("rpt_tenant_channel_totals", uuid.New().String())

	assert.Equal(t, t1.ViewKey, t2.ViewKey)
	assert.NotEqual(t, t1.ScopeKey, t2.ScopeKey)
}

func TestDerive_DifferentViewsSameTenant(t *testing.T) {
	tenant := uuid.New().String()
	a := Derive("rpt_tenant_channel_totals", tenant)
	b := Derive("rpt_tenant_model_summary", tenant)

	assert.NotEqual(t, a, b)
}

func TestForView_NilTenantUsesGlobalToken(t *testing.T) {
	assert.Equal(t, Derive("mv_x", domain.GlobalTenantToken), ForView("mv_x", nil))

	tenant := uuid.New()
	assert.Equal(t, Derive("mv_x", tenant.String()), ForView("mv_x", &tenant))
	assert.NotEqual(t, ForView("mv_x", nil), ForView("mv_x", &tenant))
}

func TestDerive_NoCollisionsAcrossManyTenants(t *testing.T) {
	seen := make(map[Key]string)
	for i := 0; i < 5000; i++ {
		token := fmt.Sprintf("tenant-%d", i)
		view := fmt.Sprintf("view_%d", i%7)
		key := Derive(view, token)
		if prev, ok := seen[key]; ok {
			t.Fatalf("collision between %s and %s/%s", prev, view, token)
		}
		seen[key] = view + "/" + token
	}
}

func TestKey_Int64(t *testing.T) {
	k := Key{ViewKey: -1, ScopeKey: 2}
	assert.Equal(t, int64(-1)<<32|2, k.Int64())

	k = Key{ViewKey: 1, ScopeKey: -1}
	assert.Equal(t, int64(1)<<32|0xFFFFFFFF, k.Int64())
	assert.Equal(t, "1/-1", k.String())
}
