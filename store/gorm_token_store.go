package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"uptask/models"
	"uptask/utils"
)

// GormTokenStore keeps codes in the confirmation_tokens table and filters
// lookups by expiry.
type GormTokenStore struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewGormTokenStore(db *gorm.DB, ttl time.Duration) *GormTokenStore {
	return &GormTokenStore{db: db, ttl: ttl, now: time.Now}
}

func (s *GormTokenStore) Issue(ctx context.Context, userID uint) (string, error) {
	db := s.db.WithContext(ctx)

	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		code, err := utils.GenerateOTP()
		if err != nil {
			return "", err
		}

		now := s.now()
		var live int64
		if err := db.Model(&models.ConfirmationToken{}).
			Where("code = ? AND expires_at > ?", code, now).
			Count(&live).Error; err != nil {
			return "", err
		}
		if live > 0 {
			continue
		}

		token := models.ConfirmationToken{
			Code:      code,
			UserID:    userID,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl),
		}
		if err := db.Create(&token).Error; err != nil {
			return "", fmt.Errorf("save confirmation token: %w", err)
		}
		return code, nil
	}

	return "", errCodeExhausted
}

func (s *GormTokenStore) Validate(ctx context.Context, code string) (uint, error) {
	token, err := s.find(s.db.WithContext(ctx), code)
	if err != nil {
		return 0, err
	}
	return token.UserID, nil
}

func (s *GormTokenStore) Consume(ctx context.Context, code string) (uint, error) {
	var userID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		token, err := s.find(tx, code)
		if err != nil {
			return err
		}

		res := tx.Delete(&models.ConfirmationToken{}, token.ID)
		if res.Error != nil {
			return res.Error
		}
		// Lost a race with another consumer
		if res.RowsAffected == 0 {
			return ErrTokenNotFound
		}

		userID = token.UserID
		return nil
	})
	return userID, err
}

func (s *GormTokenStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&models.ConfirmationToken{})
	return res.RowsAffected, res.Error
}

func (s *GormTokenStore) find(db *gorm.DB, code string) (*models.ConfirmationToken, error) {
	if code == "" {
		return nil, ErrTokenNotFound
	}

	var token models.ConfirmationToken
	err := db.Where("code = ? AND expires_at > ?", code, s.now()).
		Order("id DESC").
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}
