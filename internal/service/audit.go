package service

import (
	"context"
	"errors"

	"github.com/tasktrack/tasktrack/internal/domain"
	"github.com/tasktrack/tasktrack/internal/store/sqlite"
)

// History returns the audit trail of a dependency, newest first.
func (s *DependencyService) History(ctx context.Context, id string) ([]*domain.AuditEntry, error) {
	db := s.Store.DB()
	entries, err := sqlite.NewAuditRepository(db).ListByDependencyID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	// Every stored edge has at least its create entry, so an empty trail
	// means the edge never existed.
	if len(entries) == 0 {
		if _, err := sqlite.NewDependencyRepository(db).GetByID(ctx, id); err != nil {
			if errors.Is(err, sqlite.ErrNotFound) {
				return nil, domain.NewDependencyNotFoundError(id)
			}
			return nil, domain.NewInternalError(err)
		}
		entries = []*domain.AuditEntry{}
	}
	return entries, nil
}
