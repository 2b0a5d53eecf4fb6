package ledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/store/schema"
	"github.com/attribution-io/ledger-core/internal/types"
)

var (
	tenantA = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	tenantB = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
)

func alloc(tenant uuid.UUID, event, model, channel string, amount int64) schema.Allocation {
	return schema.Allocation{
		TenantID:        tenant,
		EventID:         types.StringPtr(event),
		ModelVersion:    model,
		ChannelCode:     channel,
		AllocatedAmount: amount,
	}
}

func TestImplicatedKeys(t *testing.T) {
	t.Run("union of pre and post images", func(t *testing.T) {
		pre := []schema.Allocation{alloc(tenantA, "e1", "v1", "paid", 10)}
		post := []schema.Allocation{
			alloc(tenantA, "e1", "v2", "paid", 10),
			alloc(tenantA, "e1", "v2", "organic", 5),
		}

		keys := ImplicatedKeys(pre, post)
		assert.Equal(t, []domain.AllocationKey{
			{TenantID: tenantA, EventID: "e1", ModelVersion: "v1"},
			{TenantID: tenantA, EventID: "e1", ModelVersion: "v2"},
		}, keys)
	})

	t.Run("distinct keys only", func(t *testing.T) {
		rows := []schema.Allocation{
			alloc(tenantA, "e1", "v1", "paid", 10),
			alloc(tenantA, "e1", "v1", "organic", 10),
		}
		keys := ImplicatedKeys(rows, rows)
		assert.Len(t, keys, 1)
	})

	t.Run("orphaned rows are not implicated", func(t *testing.T) {
		orphan := schema.Allocation{TenantID: tenantA, ModelVersion: "v1", ChannelCode: "paid"}
		keys := ImplicatedKeys([]schema.Allocation{orphan}, nil)
		assert.Empty(t, keys)
	})

	t.Run("sorted by tenant, event, model", func(t *testing.T) {
		rows := []schema.Allocation{
			alloc(tenantB, "e1", "v1", "paid", 1),
			alloc(tenantA, "e2", "v1", "paid", 1),
			alloc(tenantA, "e1", "v2", "paid", 1),
			alloc(tenantA, "e1", "v1", "paid", 1),
		}
		keys := ImplicatedKeys(nil, rows)
		assert.Equal(t, []domain.AllocationKey{
			{TenantID: tenantA, EventID: "e1", ModelVersion: "v1"},
			{TenantID: tenantA, EventID: "e1", ModelVersion: "v2"},
			{TenantID: tenantA, EventID: "e2", ModelVersion: "v1"},
			{TenantID: tenantB, EventID: "e1", ModelVersion: "v1"},
		}, keys)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ImplicatedKeys(nil, nil))
	})
}

func TestKeyTuples(t *testing.T) {
	tuples := KeyTuples([]domain.AllocationKey{{TenantID: tenantA, EventID: "e1", ModelVersion: "v1"}})
	assert.Equal(t, [][]interface{}{{tenantA, "e1", "v1"}}, tuples)
}
