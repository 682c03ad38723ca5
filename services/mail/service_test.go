package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/nri-matrimony/matrimony/config"
	"github.com/nri-matrimony/matrimony/services/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type MockMailClient struct {
	sendFunc  func(msg *mail.Msg) error
	messages  []*mail.Msg
	passwords []string
}

func (m *MockMailClient) DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error {
	m.messages = append(m.messages, messages...)
	if m.sendFunc != nil {
		for _, msg := range messages {
			if err := m.sendFunc(msg); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *MockMailClient) SetPassword(password string) {
	m.passwords = append(m.passwords, password)
}

func getTestMailConfig() *config.MailConfig {
	return &config.MailConfig{
		Host:        "localhost",
		Port:        587,
		Username:    "noreply@example.com",
		Password:    "password",
		Encryption:  "tls",
		FromAddress: "noreply@example.com",
		FromName:    "Test App",
	}
}

func TestNewServiceWithClient(t *testing.T) {
	t.Run("valid configuration", func(t *testing.T) {
		cfg := getTestMailConfig()
		mockClient := &MockMailClient{}

		service, err := NewServiceWithClient(cfg, nil, mockClient, nil)

		require.NoError(t, err)
		assert.Equal(t, cfg, service.config)
		assert.True(t, service.Configured())
	})

	t.Run("missing from address", func(t *testing.T) {
		cfg := getTestMailConfig()
		cfg.FromAddress = ""

		service, err := NewServiceWithClient(cfg, nil, &MockMailClient{}, nil)

		require.Error(t, err)
		assert.Nil(t, service)
		assert.Contains(t, err.Error(), "MAIL_FROM_ADDRESS is required")
	})
}

func TestNewService(t *testing.T) {
	t.Run("builds a real client", func(t *testing.T) {
		service, err := NewService(getTestMailConfig(), nil)

		require.NoError(t, err)
		assert.True(t, service.Configured())
		assert.Nil(t, service.tokens)
	})

	t.Run("oauth config creates a token source", func(t *testing.T) {
		cfg := getTestMailConfig()
		cfg.OAuth = config.MailOAuthConfig{ClientID: "id", RefreshToken: "refresh", TokenURL: "http://localhost/token"}

		service, err := NewService(cfg, nil)

		require.NoError(t, err)
		assert.NotNil(t, service.tokens)
	})

	t.Run("missing from address", func(t *testing.T) {
		cfg := getTestMailConfig()
		cfg.FromAddress = ""

		_, err := NewService(cfg, nil)
		require.Error(t, err)
	})
}

func TestSendPlain(t *testing.T) {
	mockClient := &MockMailClient{}
	service, err := NewServiceWithClient(getTestMailConfig(), nil, mockClient, nil)
	require.NoError(t, err)

	err = service.SendPlain(context.Background(), []string{"5551234567@txt.example.net"}, "Verification", "code 123456")

	require.NoError(t, err)
	require.Len(t, mockClient.messages, 1)
	msg := mockClient.messages[0]
	assert.Equal(t, []string{"Verification"}, msg.GetGenHeader(mail.HeaderSubject))
	require.Len(t, msg.GetToString(), 1)
	assert.Equal(t, "<5551234567@txt.example.net>", msg.GetToString()[0])
	assert.Empty(t, mockClient.passwords)
}

func TestSendHTML(t *testing.T) {
	mockClient := &MockMailClient{}
	service, err := NewServiceWithClient(getTestMailConfig(), nil, mockClient, nil)
	require.NoError(t, err)

	err = service.SendHTML(context.Background(), []string{"admin@example.com"}, "New profile", "<p>hi</p>")

	require.NoError(t, err)
	require.Len(t, mockClient.messages, 1)
}

func TestSend_InvalidRecipient(t *testing.T) {
	mockClient := &MockMailClient{}
	service, err := NewServiceWithClient(getTestMailConfig(), nil, mockClient, nil)
	require.NoError(t, err)

	err = service.SendPlain(context.Background(), []string{"not an address"}, "s", "b")

	require.Error(t, err)
	assert.Empty(t, mockClient.messages)
}

func TestSend_TransportError(t *testing.T) {
	logger, err := logging.NewService(logging.Config{Level: logging.Info, Format: "json", OutputPath: "stdout"})
	require.NoError(t, err)

	transportErr := errors.New("connection refused")
	mockClient := &MockMailClient{sendFunc: func(*mail.Msg) error { return transportErr }}
	service, err := NewServiceWithClient(getTestMailConfig(), logger, mockClient, nil)
	require.NoError(t, err)

	err = service.SendPlain(context.Background(), []string{"a@example.com"}, "s", "b")

	assert.ErrorIs(t, err, transportErr)
}

func TestDisabledService(t *testing.T) {
	service := NewDisabled(nil)

	assert.False(t, service.Configured())
	assert.ErrorIs(t, service.SendPlain(context.Background(), []string{"a@example.com"}, "s", "b"), ErrNotConfigured)
	assert.ErrorIs(t, service.SendHTML(context.Background(), []string{"a@example.com"}, "s", "b"), ErrNotConfigured)
}

func TestProvideMailService(t *testing.T) {
	t.Run("empty from address yields disabled sender", func(t *testing.T) {
		cfg := &config.Config{}
		service, err := ProvideMailService(cfg, nil)

		require.NoError(t, err)
		assert.False(t, service.Configured())
	})

	t.Run("configured", func(t *testing.T) {
		cfg := &config.Config{Mail: *getTestMailConfig()}
		service, err := ProvideMailService(cfg, nil)

		require.NoError(t, err)
		assert.True(t, service.Configured())
	})
}
