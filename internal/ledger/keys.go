package ledger

import (
	"bytes"
	"sort"

	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/store/schema"
)

// ImplicatedKeys returns the distinct keys a write touches: the union of the pre-image and post-image
// key projections, without rows whose event has been deleted. The result is sorted.
func ImplicatedKeys(pre, post []schema.Allocation) []domain.AllocationKey {
	seen := make(map[domain.AllocationKey]struct{}, len(pre)+len(post))
	for _, rows := range [][]schema.Allocation{pre, post} {
		for _, row := range rows {
			if key, ok := row.Key(); ok {
				seen[key] = struct{}{}
			}
		}
	}

	keys := make([]domain.AllocationKey, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	SortKeys(keys)
	return keys
}

// SortKeys orders keys by tenant, event and model version
func SortKeys(keys []domain.AllocationKey) {
	sort.Slice(keys, func(i, j int) bool {
		return compareKeys(keys[i], keys[j]) < 0
	})
}

func compareKeys(a, b domain.AllocationKey) int {
	if c := bytes.Compare(a.TenantID[:], b.TenantID[:]); c != 0 {
		return c
	}
	if a.EventID != b.EventID {
		if a.EventID < b.EventID {
			return -1
		}
		return 1
	}
	if a.ModelVersion != b.ModelVersion {
		if a.ModelVersion < b.ModelVersion {
			return -1
		}
		return 1
	}
	return 0
}

// KeyTuples converts keys into row-value tuples for "(tenant_id, event_id, model_version) IN ?" clauses
func KeyTuples(keys []domain.AllocationKey) [][]interface{} {
	tuples := make([][]interface{}, 0, len(keys))
	for _, key := range keys {
		tuples = append(tuples, []interface{}{key.TenantID, key.EventID, key.ModelVersion})
	}
	return tuples
}
