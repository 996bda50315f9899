package repository

import (
	"Wordrush/models/postgres"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScoreUserRepository persists per-user results in PostgreSQL
type ScoreUserRepository struct {
	db *gorm.DB
}

func NewScoreUserRepository(db *gorm.DB) *ScoreUserRepository {
	return &ScoreUserRepository{db: db}
}

// FindByUserID returns nil when the user has no score yet
func (r *ScoreUserRepository) FindByUserID(ctx context.Context, userID string) (*postgres.ScoreUser, error) {
	var score postgres.ScoreUser
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&score).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying user score: %w", err)
	}
	return &score, nil
}

// Save writes absolute counter values, creating the row when missing
func (r *ScoreUserRepository) Save(ctx context.Context, score *postgres.ScoreUser) error {
	if score.ID == "" {
		score.ID = uuid.NewString()
	}
	err := r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"wins", "losses", "draws", "updated_at"}),
	}).Create(score).Error
	if err != nil {
		return fmt.Errorf("error saving user score: %w", err)
	}
	return nil
}

// AddResult increments one counter of every listed user in one transaction
func (r *ScoreUserRepository) AddResult(ctx context.Context, userIDs []string, column string) error {
	switch column {
	case "wins", "losses", "draws":
	default:
		return fmt.Errorf("unknown score column %q", column)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, userID := range userIDs {
			score := postgres.ScoreUser{ID: uuid.NewString(), UserID: userID}
			if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&score).Error; err != nil {
				return fmt.Errorf("error initialising score of %s: %w", userID, err)
			}
			if err := tx.Model(&postgres.ScoreUser{}).Where("user_id = ?", userID).
				UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error; err != nil {
				return fmt.Errorf("error updating score of %s: %w", userID, err)
			}
		}
		return nil
	})
}

func (r *ScoreUserRepository) DeleteByUserID(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&postgres.ScoreUser{}).Error; err != nil {
		return fmt.Errorf("error deleting user score: %w", err)
	}
	return nil
}
