// Package sqlxrepos implements the domain repositories on PostgreSQL
// via sqlx. Constraint violations are surfaced as domain errors so the
// services never see driver types.
package sqlxrepos

import (
	"github.com/lib/pq"
	"github.com/pkg/errors"
)

// pgConstraintErr resolves a violated named constraint to its domain error.
func pgConstraintErr(err error, constraints map[string]error) (error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if mapped, ok := constraints[string(pqErr.Constraint)]; ok {
			return mapped, true
		}
	}
	return nil, false
}
