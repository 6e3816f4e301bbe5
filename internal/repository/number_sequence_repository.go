package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tigerapp/oficina-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository hands out per-kind, per-year document numbers
type NumberSequenceRepository struct {
	db *gorm.DB
}

func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// WithTx returns a repository bound to tx
func (r *NumberSequenceRepository) WithTx(tx *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: tx}
}

// GetNextNumber atomically increments the sequence for kind/year and returns
// the new value. The row is locked with SELECT ... FOR UPDATE on PostgreSQL;
// SQLite serializes writers on its own. A missing row starts at 1.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, kind string, year int) (int, error) {
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("kind = ? AND year = ?", kind, year).
			First(&seq).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			seq = domain.NumberSequence{Kind: kind, Year: year, LastSequence: 1, UpdatedAt: time.Now().UTC()}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			next = 1
		case err != nil:
			return fmt.Errorf("failed to get number sequence: %w", err)
		default:
			next = seq.LastSequence + 1
			if err := tx.Model(&domain.NumberSequence{}).
				Where("kind = ? AND year = ?", kind, year).
				Updates(map[string]interface{}{
					"last_sequence": next,
					"updated_at":    time.Now().UTC(),
				}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// GetCurrentSequence returns the last issued value, 0 if none
func (r *NumberSequenceRepository) GetCurrentSequence(ctx context.Context, kind string, year int) (int, error) {
	var seq domain.NumberSequence
	err := r.db.WithContext(ctx).Where("kind = ? AND year = ?", kind, year).First(&seq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", err)
	}
	return seq.LastSequence, nil
}
