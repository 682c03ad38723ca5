package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/nri-matrimony/matrimony/services/phone"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	store    Store
	gateway  phone.DeliveryGateway
	generate CodeGenerator
	now      func() time.Time
	logger   *logging.Service
}

func NewService(store Store, gateway phone.DeliveryGateway, logger *logging.Service) *Service {
	return &Service{
		store:    store,
		gateway:  gateway,
		generate: GenerateCode,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *Service) SetCodeGenerator(gen CodeGenerator) {
	if gen != nil {
		s.generate = gen
	}
}

// SetClock replaces the time source used by State. It should match the store's clock.
func (s *Service) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) Configured() bool {
	return s.gateway != nil && s.gateway.Configured()
}

// SendCode issues a new code for the pair, delivers it, and only then records it as pending.
func (s *Service) SendCode(ctx context.Context, userID uint, phoneNumber string) error {
	log := s.logger.With(logging.UserID(userID), logging.Phone(phoneNumber))

	if !s.Configured() {
		log.Error("send code requested but delivery gateway is not configured")
		return &ConfigurationError{Reason: "delivery gateway"}
	}

	code, err := s.generate()
	if err != nil {
		return err
	}

	if err := s.gateway.Send(ctx, phoneNumber, code); err != nil {
		log.Warn("verification code delivery failed", zap.Error(err))
		return err
	}

	record, err := s.store.CreatePending(ctx, userID, phoneNumber, code)
	if err != nil {
		log.Error("failed to store pending verification", zap.Error(err))
		return fmt.Errorf("store pending verification: %w", err)
	}

	log.Info("verification code sent", zap.Time("expires_at", record.ExpiresAt))
	return nil
}

func (s *Service) VerifyCode(ctx context.Context, userID uint, phoneNumber, code string) error {
	log := s.logger.With(logging.UserID(userID), logging.Phone(phoneNumber))

	ok, err := s.store.TryVerify(ctx, userID, phoneNumber, code)
	if err != nil {
		log.Error("verification lookup failed", zap.Error(err))
		return fmt.Errorf("verify code: %w", err)
	}
	if !ok {
		log.Info("verification code rejected")
		return ErrInvalidOrExpiredCode
	}

	log.Info("phone number verified")
	return nil
}

func (s *Service) IsVerifiedUnconsumed(ctx context.Context, userID uint, phoneNumber string) (bool, error) {
	return s.store.IsVerifiedUnconsumed(ctx, userID, phoneNumber)
}

func (s *Service) Consume(ctx context.Context, userID uint, phoneNumber string) (bool, error) {
	return s.store.Consume(ctx, userID, phoneNumber)
}

// State reports where the pair currently sits in its lifecycle.
func (s *Service) State(ctx context.Context, userID uint, phoneNumber string) (State, error) {
	record, err := s.store.FindLatest(ctx, userID, phoneNumber)
	if errors.Is(err, ErrRecordNotFound) {
		return StateNone, nil
	}
	if err != nil {
		return "", err
	}
	return record.StateAt(s.now()), nil
}

// Store returns the underlying store bound to tx, for callers that bind a
// verification to another write in the same transaction.
func (s *Service) Store(tx *gorm.DB) Store {
	if tx == nil {
		return s.store
	}
	return s.store.WithTx(tx)
}
