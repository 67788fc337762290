package push

import (
	"errors"

	"summit-push-go/internal/models"
)

// PruneGone drops subscriptions whose delivery failed with ErrGone and
// returns the endpoints that were removed.
func PruneGone(reg *Registry, report models.DispatchReport) []string {
	var removed []string
	for _, f := range report.Failures {
		if !errors.Is(f.Err, ErrGone) {
			continue
		}
		if reg.RemoveEndpoint(f.Endpoint) {
			removed = append(removed, f.Endpoint)
		}
	}
	return removed
}
