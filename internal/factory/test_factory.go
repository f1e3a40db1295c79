package factory

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aweston/flagchase/internal/dependencies/mocks"
	"github.com/aweston/flagchase/internal/services/account"
	sessionmemory "github.com/aweston/flagchase/internal/sessions/memory"
	"github.com/aweston/flagchase/internal/storage/memory"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	Mailer     *CaptureMailer
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	sessionStore := sessionmemory.New(mockClock)
	mailer := &CaptureMailer{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	accountCfg := account.Config{
		JWTSecret:     []byte("test-secret"),
		TokenDuration: 24 * time.Hour,
	}
	app := newWithDependencies(store, sessionStore, mailer, mockClock, mockRandom, accountCfg, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		Mailer:     mailer,
	}
}

// SentMail records one delivery made through a CaptureMailer
type SentMail struct {
	Kind  string
	Email string
	Token string
}

// CaptureMailer records deliveries instead of sending them
type CaptureMailer struct {
	mu   sync.Mutex
	sent []SentMail
}

// Ensure CaptureMailer implements Mailer
var _ account.Mailer = (*CaptureMailer)(nil)

func (m *CaptureMailer) SendVerification(ctx context.Context, email, token string) error {
	m.record(SentMail{Kind: "verification", Email: email, Token: token})
	return nil
}

func (m *CaptureMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.record(SentMail{Kind: "password_reset", Email: email, Token: token})
	return nil
}

// Sent returns a copy of all recorded deliveries
func (m *CaptureMailer) Sent() []SentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentMail, len(m.sent))
	copy(out, m.sent)
	return out
}

// LastToken returns the token of the most recent delivery, or ""
func (m *CaptureMailer) LastToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return ""
	}
	return m.sent[len(m.sent)-1].Token
}

func (m *CaptureMailer) record(mail SentMail) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, mail)
}
