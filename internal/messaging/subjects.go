package messaging

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/attribution-io/ledger-core/internal/domain"
)

const (
	// RefreshResultSubjectPrefix prefixes every refresh result subject
	RefreshResultSubjectPrefix = "refresh.results"

	// RefreshRequestSubjectPrefix prefixes every refresh request subject
	RefreshRequestSubjectPrefix = "refresh.requests"
)

// RefreshResultSubject returns the subject a result is published on.
// Format: refresh.results.{outcome}.{view}, e.g. refresh.results.failed.mv_channel_revenue
func RefreshResultSubject(result domain.RefreshResult) string {
	return fmt.Sprintf("%s.%s.%s", RefreshResultSubjectPrefix, strings.ToLower(string(result.Outcome)), subjectToken(result.ViewName))
}

// RefreshRequestSubject returns the subject a refresh request for view is published on.
// Format: refresh.requests.{view}
func RefreshRequestSubject(viewName string) string {
	return fmt.Sprintf("%s.%s", RefreshRequestSubjectPrefix, subjectToken(viewName))
}

// subjectToken replaces characters NATS treats as separators or wildcards
func subjectToken(s string) string {
	return strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_").Replace(s)
}

// RefreshRequest asks for one view to be refreshed, for one tenant or globally
type RefreshRequest struct {
	ViewName      string     `json:"view_name"`
	TenantID      *uuid.UUID `json:"tenant_id"`
	CorrelationID string     `json:"correlation_id"`
}
