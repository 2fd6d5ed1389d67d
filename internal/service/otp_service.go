package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campushq/attendly/internal/repository"
	appErrors "github.com/campushq/attendly/pkg/errors"
	"github.com/campushq/attendly/pkg/jobs"
)

// Mailer delivers OTP codes out of band.
type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

// LogMailer writes the code to the log instead of sending real mail.
// Stands in for an SMTP mailer in development.
type LogMailer struct {
	Logger *zap.Logger
}

func (m LogMailer) SendOTP(_ context.Context, email, code string) error {
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("otp mail", zap.String("email", email), zap.String("code", code))
	return nil
}

// OTPConfig tunes challenge lifetime and resend pacing.
type OTPConfig struct {
	TTL            time.Duration
	ResendCooldown time.Duration
	MailWorkers    int
}

type challenge struct {
	Email     string
	Code      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type mailPayload struct {
	Email string
	Code  string
}

// OTPService manages password-reset challenges. Codes expire at an
// absolute deadline fixed when the challenge is created; the deadline
// is re-checked on every verification attempt. Mail goes out through
// a background queue so issuing never blocks on delivery.
type OTPService struct {
	users  *repository.Users
	mailer Mailer
	queue  *jobs.Queue
	logger *zap.Logger
	config OTPConfig

	mu         sync.Mutex
	challenges map[string]*challenge
}

// NewOTPService constructs the OTP service.
func NewOTPService(users *repository.Users, mailer Mailer, logger *zap.Logger, config OTPConfig) *OTPService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mailer == nil {
		mailer = LogMailer{Logger: logger}
	}
	if config.TTL <= 0 {
		config.TTL = 5 * time.Minute
	}
	if config.ResendCooldown <= 0 {
		config.ResendCooldown = time.Minute
	}

	svc := &OTPService{
		users:      users,
		mailer:     mailer,
		logger:     logger,
		config:     config,
		challenges: make(map[string]*challenge),
	}
	svc.queue = jobs.NewQueue("otp-mail", svc.deliver, jobs.QueueConfig{
		Workers: config.MailWorkers,
		Logger:  logger,
	})
	return svc
}

// Start begins background mail delivery.
func (s *OTPService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the mail queue.
func (s *OTPService) Stop() {
	s.queue.Stop()
}

// Begin creates a challenge for the account with the given email and
// queues the code for delivery. Returns the challenge id the caller
// presents on verification.
func (s *OTPService) Begin(ctx context.Context, email string) (string, error) {
	user, ok := s.users.FindByEmail(email)
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no account found with this email address")
	}

	code, err := generateCode()
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to generate code")
	}

	now := time.Now().UTC()
	id := uuid.NewString()

	s.mu.Lock()
	s.challenges[id] = &challenge{
		Email:     user.Email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.config.TTL),
	}
	s.mu.Unlock()

	s.enqueueMail(id, user.Email, code)
	s.logger.Info("otp challenge issued", zap.String("challenge", id))
	return id, nil
}

// Verify checks the submitted code against the challenge. The absolute
// deadline is evaluated on every attempt, so a challenge that expired
// between attempts fails even if an earlier attempt was made in time.
// On success the challenge is consumed and the account email returned.
func (s *OTPService) Verify(id, code string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[id]
	if !ok {
		return "", appErrors.Clone(appErrors.ErrNotFound, "no active verification challenge")
	}
	if time.Now().UTC().After(ch.ExpiresAt) {
		delete(s.challenges, id)
		return "", appErrors.Clone(appErrors.ErrOTPExpired, "verification code has expired, request a new one")
	}
	if ch.Code != code {
		return "", appErrors.Clone(appErrors.ErrValidation, "invalid verification code")
	}

	delete(s.challenges, id)
	return ch.Email, nil
}

// Resend generates a fresh code for an active challenge, extending the
// deadline. Requests inside the cooldown window are rejected.
func (s *OTPService) Resend(ctx context.Context, id string) error {
	s.mu.Lock()
	ch, ok := s.challenges[id]
	if !ok {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrNotFound, "no active verification challenge")
	}
	now := time.Now().UTC()
	if now.Sub(ch.IssuedAt) < s.config.ResendCooldown {
		s.mu.Unlock()
		return appErrors.Clone(appErrors.ErrConflict, "please wait before requesting another code")
	}

	code, err := generateCode()
	if err != nil {
		s.mu.Unlock()
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, "failed to generate code")
	}
	ch.Code = code
	ch.IssuedAt = now
	ch.ExpiresAt = now.Add(s.config.TTL)
	email := ch.Email
	s.mu.Unlock()

	s.enqueueMail(id, email, code)
	s.logger.Info("otp challenge resent", zap.String("challenge", id))
	return nil
}

// Cancel discards an active challenge.
func (s *OTPService) Cancel(id string) {
	s.mu.Lock()
	delete(s.challenges, id)
	s.mu.Unlock()
}

// Remaining reports how long a challenge stays valid. Zero means the
// challenge is gone or already expired.
func (s *OTPService) Remaining(id string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.challenges[id]
	if !ok {
		return 0
	}
	left := time.Until(ch.ExpiresAt)
	if left < 0 {
		return 0
	}
	return left
}

func (s *OTPService) enqueueMail(id, email, code string) {
	err := s.queue.Enqueue(jobs.Job{
		ID:      id,
		Type:    "otp-mail",
		Payload: mailPayload{Email: email, Code: code},
	})
	if err != nil {
		s.logger.Warn("failed to queue otp mail", zap.String("challenge", id), zap.Error(err))
	}
}

func (s *OTPService) deliver(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(mailPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	return s.mailer.SendOTP(ctx, payload.Email, payload.Code)
}

// generateCode produces a 6-digit code with a uniform crypto/rand draw.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
