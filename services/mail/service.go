package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("mail transport is not configured")

// Sender is the outbound email transport used by the rest of the application.
type Sender interface {
	SendPlain(ctx context.Context, to []string, subject, body string) error
	SendHTML(ctx context.Context, to []string, subject, htmlBody string) error
	Configured() bool
}

type Client interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
	SetPassword(password string)
}

type Service struct {
	config *config.MailConfig
	client Client
	tokens *TokenSource
	logger *logging.Service
}

func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	logger.Info("initializing mail service",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("encryption", cfg.Encryption),
		zap.Bool("oauth", cfg.OAuth.Enabled()),
		zap.String("from_address", cfg.FromAddress))

	if cfg.FromAddress == "" {
		logger.Error("mail service initialization failed: FROM_ADDRESS is required")
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	switch {
	case cfg.OAuth.Enabled():
		clientOpts = append(clientOpts, mail.WithSMTPAuth(mail.SMTPAuthXOAUTH2))
	case cfg.Username != "":
		clientOpts = append(clientOpts, mail.WithSMTPAuth(mail.SMTPAuthPlain))
	}

	switch cfg.Encryption {
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts, mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" && !cfg.OAuth.Enabled() {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		logger.Error("failed to create mail client",
			zap.Error(err),
			zap.String("host", cfg.Host),
			zap.Int("port", cfg.Port))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	var tokens *TokenSource
	if cfg.OAuth.Enabled() {
		tokens = NewTokenSource(cfg.OAuth)
	}

	return NewServiceWithClient(cfg, logger, client, tokens)
}

func NewServiceWithClient(cfg *config.MailConfig, logger *logging.Service, client Client, tokens *TokenSource) (*Service, error) {
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}

	return &Service{
		config: cfg,
		client: client,
		tokens: tokens,
		logger: logger,
	}, nil
}

// NewDisabled returns a Sender that reports itself unconfigured and refuses to send.
func NewDisabled(logger *logging.Service) *Service {
	return &Service{logger: logger}
}

func (s *Service) Configured() bool {
	return s != nil && s.client != nil
}

func (s *Service) newMessage() (*mail.Msg, error) {
	message := mail.NewMsg()

	fromAddr := s.config.FromAddress
	if s.config.FromName != "" {
		fromAddr = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}

	if err := message.From(fromAddr); err != nil {
		return nil, fmt.Errorf("failed to set FROM address: %w", err)
	}

	return message, nil
}

func (s *Service) send(ctx context.Context, message *mail.Msg) error {
	if s.tokens != nil {
		token, err := s.tokens.RefreshIfExpired(ctx)
		if err != nil {
			s.logger.Error("failed to refresh mail access token", zap.Error(err))
			return fmt.Errorf("failed to refresh mail access token: %w", err)
		}
		s.client.SetPassword(token)
	}

	startTime := time.Now()
	err := s.client.DialAndSendWithContext(ctx, message)
	duration := time.Since(startTime)

	if err != nil {
		s.logger.Error("failed to send email",
			zap.Error(err),
			zap.Duration("attempt_duration", duration))
		return err
	}

	s.logger.Info("email sent successfully", zap.Duration("send_duration", duration))
	return nil
}

func (s *Service) compose(to []string, subject string) (*mail.Msg, error) {
	message, err := s.newMessage()
	if err != nil {
		return nil, err
	}

	if err := message.To(to...); err != nil {
		s.logger.Error("failed to set TO addresses", zap.Error(err), zap.Int("recipients", len(to)))
		return nil, fmt.Errorf("failed to set TO addresses: %w", err)
	}

	message.Subject(subject)
	return message, nil
}

func (s *Service) SendPlain(ctx context.Context, to []string, subject, body string) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	s.logger.Debug("sending plain text email",
		zap.Int("recipients", len(to)),
		zap.String("subject", subject),
		zap.Int("body_length", len(body)))

	message, err := s.compose(to, subject)
	if err != nil {
		return err
	}
	message.SetBodyString(mail.TypeTextPlain, body)

	return s.send(ctx, message)
}

func (s *Service) SendHTML(ctx context.Context, to []string, subject, htmlBody string) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	s.logger.Debug("sending HTML email",
		zap.Int("recipients", len(to)),
		zap.String("subject", subject),
		zap.Int("body_length", len(htmlBody)))

	message, err := s.compose(to, subject)
	if err != nil {
		return err
	}
	message.SetBodyString(mail.TypeTextHTML, htmlBody)

	return s.send(ctx, message)
}
