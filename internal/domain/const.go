package domain

const (
	// AllocationTolerance is the maximum absolute drift, in minor units, between the sum of a key's
	// allocations and the revenue of its source event
	AllocationTolerance int64 = 1

	// GlobalTenantToken stands in for the tenant in lock keys of tenant-agnostic views
	GlobalTenantToken = "GLOBAL"
)
