package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/nri-matrimony/matrimony/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevokedToken blacklists a bearer token by its JTI until ExpiresAt.
type RevokedToken struct {
	JTI       string    `gorm:"primaryKey;size:64"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (RevokedToken) TableName() string {
	return "revoked_tokens"
}

type Service struct {
	db     *gorm.DB
	logger *logging.Service
	now    func() time.Time
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{db: db, logger: logger, now: time.Now}
}

func (s *Service) Revoke(jti string, expiresAt time.Time) error {
	record := RevokedToken{JTI: jti, ExpiresAt: expiresAt.UTC()}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	s.logger.Info("bearer token revoked", zap.String("jti", jti), zap.Time("expires_at", expiresAt))
	return nil
}

func (s *Service) IsRevoked(jti string) (bool, error) {
	var count int64
	err := s.db.Model(&RevokedToken{}).
		Where("jti = ? AND expires_at > ?", jti, s.now().UTC()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return count > 0, nil
}

func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&RevokedToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("cleanup revoked tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// RunCleanup deletes expired entries every interval until ctx is cancelled.
func (s *Service) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.CleanupExpired(ctx)
			if err != nil {
				s.logger.Error("revoked token cleanup failed", zap.Error(err))
				continue
			}
			if removed > 0 {
				s.logger.Debug("revoked tokens cleaned up", zap.Int64("removed", removed))
			}
		}
	}
}
