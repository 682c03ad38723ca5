package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/nri-matrimony/matrimony/services/verification"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrPhoneNotVerified = errors.New("phone number must be verified before creating a profile")
	ErrNotOwner         = errors.New("profile belongs to another user")
	ErrPhoneMismatch    = errors.New("phone number does not match the profile")
)

const notifyTimeout = 10 * time.Second

// VerificationBinder exposes the verification store bound to a caller's transaction.
type VerificationBinder interface {
	Store(tx *gorm.DB) verification.Store
}

type Service struct {
	db                       *gorm.DB
	verifications            VerificationBinder
	notifier                 *Notifier
	requirePhoneVerification bool
	logger                   *logging.Service
}

func NewService(db *gorm.DB, verifications VerificationBinder, notifier *Notifier, requirePhoneVerification bool, logger *logging.Service) *Service {
	return &Service{
		db:                       db,
		verifications:            verifications,
		notifier:                 notifier,
		requirePhoneVerification: requirePhoneVerification,
		logger:                   logger,
	}
}

// Create stores a new profile. When a phone number is supplied and the caller holds a verified,
// unconsumed code for it, the code is consumed and the profile is stamped phone-verified in the
// same transaction as the insert.
func (s *Service) Create(ctx context.Context, userID uint, input CreateInput) (*Profile, error) {
	p := &Profile{
		UserID:             userID,
		FirstName:          strings.TrimSpace(input.FirstName),
		LastName:           strings.TrimSpace(input.LastName),
		Age:                input.Age,
		Gender:             input.Gender,
		Denomination:       strings.TrimSpace(input.Denomination),
		Location:           strings.TrimSpace(input.Location),
		Occupation:         input.Occupation,
		AboutMe:            input.AboutMe,
		PartnerPreferences: input.PartnerPreferences,
		PhotoURL:           input.PhotoURL,
		PhoneNumber:        strings.TrimSpace(input.PhoneNumber),
		CreatedBy:          input.CreatedBy,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.PhoneNumber != "" {
			store := s.verifications.Store(tx)

			verified, err := store.IsVerifiedUnconsumed(ctx, userID, p.PhoneNumber)
			if err != nil {
				return fmt.Errorf("check phone verification: %w", err)
			}
			if verified {
				consumed, err := store.Consume(ctx, userID, p.PhoneNumber)
				if err != nil {
					return fmt.Errorf("consume phone verification: %w", err)
				}
				p.PhoneVerified = consumed
			}

			if s.requirePhoneVerification && !p.PhoneVerified {
				return ErrPhoneNotVerified
			}
		}

		return tx.Create(p).Error
	})
	if err != nil {
		if !errors.Is(err, ErrPhoneNotVerified) {
			s.logger.Error("failed to create profile", logging.UserID(userID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("profile created",
		logging.UserID(userID),
		zap.Uint("profile_id", p.ID),
		zap.Bool("phone_verified", p.PhoneVerified))

	s.notify(ctx, p)
	return p, nil
}

func (s *Service) notify(ctx context.Context, p *Profile) {
	if !s.notifier.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := s.notifier.ProfileCreated(ctx, p); err != nil {
		s.logger.Warn("profile notification failed", zap.Uint("profile_id", p.ID), zap.Error(err))
	}
}

func (s *Service) Get(ctx context.Context, id uint) (*Profile, error) {
	var p Profile
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByUserID returns the caller's most recent profile.
func (s *Service) GetByUserID(ctx context.Context, userID uint) (*Profile, error) {
	var p Profile
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Service) List(ctx context.Context, f Filters) ([]Profile, error) {
	query := s.db.WithContext(ctx).Model(&Profile{})
	if f.Gender != "" {
		query = query.Where("gender = ?", f.Gender)
	}
	if f.Denomination != "" {
		query = query.Where("denomination = ?", f.Denomination)
	}
	if f.Location != "" {
		query = query.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(f.Location)+"%")
	}
	if f.MinAge > 0 {
		query = query.Where("age >= ?", f.MinAge)
	}
	if f.MaxAge > 0 {
		query = query.Where("age <= ?", f.MaxAge)
	}

	var profiles []Profile
	if err := query.Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func markPhoneVerified(db *gorm.DB, profileID uint) error {
	result := db.Model(&Profile{}).Where("id = ?", profileID).Update("phone_verified", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// BindVerifiedPhone checks code for phoneNumber and stamps an existing profile as phone-verified.
// The profile must belong to userID and carry the same number. Verify, consume and stamp commit
// together, so a rejected bind leaves the pending code untouched.
func (s *Service) BindVerifiedPhone(ctx context.Context, userID, profileID uint, phoneNumber, code string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p Profile
		if err := tx.First(&p, profileID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProfileNotFound
			}
			return err
		}
		if p.UserID != userID {
			return ErrNotOwner
		}
		if p.PhoneNumber != strings.TrimSpace(phoneNumber) {
			return ErrPhoneMismatch
		}

		store := s.verifications.Store(tx)

		ok, err := store.TryVerify(ctx, userID, p.PhoneNumber, code)
		if err != nil {
			return fmt.Errorf("verify code: %w", err)
		}
		if !ok {
			return verification.ErrInvalidOrExpiredCode
		}

		consumed, err := store.Consume(ctx, userID, p.PhoneNumber)
		if err != nil {
			return fmt.Errorf("consume phone verification: %w", err)
		}
		if !consumed {
			return verification.ErrInvalidOrExpiredCode
		}

		if err := markPhoneVerified(tx, p.ID); err != nil {
			return err
		}

		s.logger.Info("profile phone verified", logging.UserID(userID), zap.Uint("profile_id", p.ID))
		return nil
	})
}
