package ledger

import (
	"github.com/attribution-io/ledger-core/internal/domain"
	"github.com/attribution-io/ledger-core/internal/store/schema"
)

// PlanBatches splits rows into statements of at most maxRows rows without splitting any key across two
// statements. The trigger validates each statement against the rows it can see, so a key written
// half in one statement and half in the next would be judged on a partial sum.
//
// A key larger than maxRows gets a statement of its own. Rows without an event are never validated and
// fill gaps freely. Groups keep the order in which their first row appears.
func PlanBatches(rows []schema.Allocation, maxRows int) [][]schema.Allocation {
	if len(rows) == 0 {
		return nil
	}
	if maxRows < 1 {
		maxRows = 1
	}

	var (
		order  []domain.AllocationKey
		groups = make(map[domain.AllocationKey][]schema.Allocation)
		loose  []schema.Allocation
	)
	for _, row := range rows {
		key, ok := row.Key()
		if !ok {
			loose = append(loose, row)
			continue
		}
		if _, exists := groups[key]; !exists {
			order = append(order, key)
		}
		groups[key] = append(groups[key], row)
	}

	var (
		batches [][]schema.Allocation
		current []schema.Allocation
	)
	flush := func() {
		if len(current) > 0 {
			batches = append(batches, current)
			current = nil
		}
	}

	for _, key := range order {
		group := groups[key]
		if len(current)+len(group) > maxRows {
			flush()
		}
		current = append(current, group...)
	}

	for _, row := range loose {
		if len(current) >= maxRows {
			flush()
		}
		current = append(current, row)
	}
	flush()

	return batches
}

// ChunkKeys splits keys into chunks of at most size keys
func ChunkKeys(keys []domain.AllocationKey, size int) [][]domain.AllocationKey {
	if size < 1 {
		size = 1
	}
	var chunks [][]domain.AllocationKey
	for start := 0; start < len(keys); start += size {
		end := min(start+size, len(keys))
		chunks = append(chunks, keys[start:end])
	}
	return chunks
}
