package verification

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrRecordNotFound = errors.New("verification record not found")

type Store interface {
	CreatePending(ctx context.Context, userID uint, phoneNumber, code string) (*Record, error)
	TryVerify(ctx context.Context, userID uint, phoneNumber, code string) (bool, error)
	IsVerifiedUnconsumed(ctx context.Context, userID uint, phoneNumber string) (bool, error)
	// Consume reports whether a verified record was claimed by this call.
	Consume(ctx context.Context, userID uint, phoneNumber string) (bool, error)
	FindLatest(ctx context.Context, userID uint, phoneNumber string) (*Record, error)
	WithTx(tx *gorm.DB) Store
}

type GormStore struct {
	db     *gorm.DB
	expiry time.Duration
	now    func() time.Time
}

func NewGormStore(db *gorm.DB, expiry time.Duration, now func() time.Time) *GormStore {
	if now == nil {
		now = time.Now
	}
	return &GormStore{db: db, expiry: expiry, now: now}
}

func (s *GormStore) WithTx(tx *gorm.DB) Store {
	return &GormStore{db: tx, expiry: s.expiry, now: s.now}
}

func (s *GormStore) clock() time.Time {
	return s.now().UTC()
}

// CreatePending replaces whatever record the pair holds with a fresh pending one in a single statement.
func (s *GormStore) CreatePending(ctx context.Context, userID uint, phoneNumber, code string) (*Record, error) {
	now := s.clock()
	record := &Record{
		UserID:      userID,
		PhoneNumber: phoneNumber,
		Code:        code,
		ExpiresAt:   now.Add(s.expiry),
		CreatedAt:   now,
	}

	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "phone_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"id", "code", "expires_at", "verified", "consumed", "created_at"}),
		}).
		Create(record).Error
	if err != nil {
		return nil, err
	}

	return record, nil
}

func (s *GormStore) TryVerify(ctx context.Context, userID uint, phoneNumber, code string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&Record{}).
		Where("user_id = ? AND phone_number = ? AND code = ?", userID, phoneNumber, code).
		Where("expires_at > ? AND verified = ? AND consumed = ?", s.clock(), false, false).
		Update("verified", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (s *GormStore) IsVerifiedUnconsumed(ctx context.Context, userID uint, phoneNumber string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Record{}).
		Where("user_id = ? AND phone_number = ? AND verified = ? AND consumed = ?", userID, phoneNumber, true, false).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) Consume(ctx context.Context, userID uint, phoneNumber string) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&Record{}).
		Where("user_id = ? AND phone_number = ? AND verified = ? AND consumed = ?", userID, phoneNumber, true, false).
		Update("consumed", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) FindLatest(ctx context.Context, userID uint, phoneNumber string) (*Record, error) {
	var record Record
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND phone_number = ?", userID, phoneNumber).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &record, nil
}
