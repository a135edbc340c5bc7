package repository

import (
	"context"
	"errors"

	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTokenRepository is a GORM implementation of TokenRepository
type GormTokenRepository struct {
	db *gorm.DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

// FindByKey finds a token by key with its user loaded.
// The condition is built from the struct so the key column gets quoted; KEY is reserved in MySQL.
func (r *GormTokenRepository) FindByKey(ctx context.Context, key string) (*models.AuthToken, error) {
	if key == "" {
		// a zero-valued struct condition would match every row
		return nil, gorm.ErrRecordNotFound
	}

	var token models.AuthToken
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where(&models.AuthToken{Key: key}).
		First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// GetOrCreate returns the existing token for the user, or stores one with the given key.
// A concurrent insert for the same user is absorbed by the unique user_id index.
func (r *GormTokenRepository) GetOrCreate(ctx context.Context, userID uint64, key string) (*models.AuthToken, error) {
	db := r.db.WithContext(ctx)

	var token models.AuthToken
	err := db.Where("user_id = ?", userID).First(&token).Error
	if err == nil {
		return &token, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := models.AuthToken{Key: key, UserID: userID}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&created).Error; err != nil {
		return nil, err
	}

	if err := db.Where("user_id = ?", userID).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}
