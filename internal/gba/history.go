package gba

import (
	"fmt"

	"gbadb/internal/database/sqlc"
)

// GetHistory returns the most recent library operations, ordered newest first.
func (s *GBAService) GetHistory(limit int) ([]*sqlc.Operation, error) {
	ops, err := s.database.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}
