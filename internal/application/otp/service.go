package otp

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/pkg/hash"
)

// Service issues and verifies short-lived numeric one-time codes per email
// address, with a bounded retry budget. Codes are never stored in plaintext:
// the record holds a keyed hash, and the lookup key is a keyed hash of the
// email.
type Service interface {
	// Issue delivers a fresh code by email and stores its record. Any live
	// record for the same address is replaced, resetting retries.
	Issue(ctx context.Context, email string) error
	// IssueSMS delivers the code to a phone number instead; the record is
	// still keyed by email so verification stays channel-agnostic.
	IssueSMS(ctx context.Context, email, phone string) error
	// Verify consumes the live record on success. Wrong codes burn a retry;
	// the record is destroyed when retries hit the ceiling.
	Verify(ctx context.Context, email, code string) error
}

type otpStore interface {
	Put(ctx context.Context, email string, rec *domain.OTPRecord, ttl time.Duration) error
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	Delete(ctx context.Context, email string) error
	RecordFailure(ctx context.Context, email string, maxRetries int) (lockedOut bool, err error)
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

type service struct {
	repo       otpStore
	mailer     mailer
	smsSender  smsSender
	secret     string
	ttl        time.Duration
	maxRetries int
}

type ServiceDeps struct {
	Repo       otpStore
	Mailer     mailer
	SMSSender  smsSender
	Secret     string
	TTL        time.Duration
	MaxRetries int
}

func NewService(deps ServiceDeps) Service {
	return &service{
		repo:       deps.Repo,
		mailer:     deps.Mailer,
		smsSender:  deps.SMSSender,
		secret:     deps.Secret,
		ttl:        deps.TTL,
		maxRetries: deps.MaxRetries,
	}
}

func (s *service) Issue(ctx context.Context, email string) error {
	code, err := newCode()
	if err != nil {
		return err
	}
	// Deliver before storing: a record must never exist for a code that was
	// not sent.
	subject := "Your verification code"
	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.ttl.Minutes()))
	if err := s.mailer.SendEmail(email, subject, body); err != nil {
		return fmt.Errorf("send otp email: %w", domain.ErrDeliveryFailed)
	}
	return s.store(ctx, email, code)
}

func (s *service) IssueSMS(ctx context.Context, email, phone string) error {
	if s.smsSender == nil {
		return fmt.Errorf("sms delivery not configured: %w", domain.ErrBadRequest)
	}
	code, err := newCode()
	if err != nil {
		return err
	}
	if err := s.smsSender.SendSMS(ctx, phone, "Your verification code: "+code); err != nil {
		return fmt.Errorf("send otp sms: %w", domain.ErrDeliveryFailed)
	}
	return s.store(ctx, email, code)
}

func (s *service) store(ctx context.Context, email, code string) error {
	rec := &domain.OTPRecord{
		OTPHash: hash.Keyed(s.secret, "otp_value:"+code),
		Retries: 0,
	}
	return s.repo.Put(ctx, email, rec, s.ttl)
}

func (s *service) Verify(ctx context.Context, email, code string) error {
	rec, err := s.repo.Get(ctx, email)
	if err != nil {
		return err
	}

	if !hash.Equal(rec.OTPHash, hash.Keyed(s.secret, "otp_value:"+code)) {
		lockedOut, err := s.repo.RecordFailure(ctx, email, s.maxRetries)
		if err != nil {
			// Includes the record expiring between the read and the rewrite,
			// which surfaces as domain.ErrNotFound.
			return err
		}
		if lockedOut {
			slog.Warn("otp challenge locked out", "retries", s.maxRetries)
			return fmt.Errorf("otp attempts exhausted: %w", domain.ErrLockedOut)
		}
		return fmt.Errorf("invalid otp: %w", domain.ErrUnauthorized)
	}

	if err := s.repo.Delete(ctx, email); err != nil {
		// The code matched; failing to delete only leaves the record to its
		// TTL, so surface it as a warning rather than failing the login.
		slog.Warn("failed to delete consumed otp record", "err", err)
	}
	return nil
}

// newCode returns a uniformly random 6-digit code in [100000, 999999].
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
