package testutils

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type MockMailSender struct {
	mock.Mock
}

func (m *MockMailSender) SendPlain(ctx context.Context, to []string, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

func (m *MockMailSender) SendHTML(ctx context.Context, to []string, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

func (m *MockMailSender) Configured() bool {
	return true
}

// SentCode is one delivery captured by FakeGateway.
type SentCode struct {
	PhoneNumber string
	Code        string
}

// FakeGateway records every code it is asked to deliver and fails with Err when set.
type FakeGateway struct {
	mu           sync.Mutex
	Sent         []SentCode
	Err          error
	Unconfigured bool
}

func (g *FakeGateway) Send(ctx context.Context, phoneNumber, code string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return g.Err
	}
	g.Sent = append(g.Sent, SentCode{PhoneNumber: phoneNumber, Code: code})
	return nil
}

func (g *FakeGateway) Configured() bool {
	return !g.Unconfigured
}

func (g *FakeGateway) LastCode() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.Sent) == 0 {
		return ""
	}
	return g.Sent[len(g.Sent)-1].Code
}
