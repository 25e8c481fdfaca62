package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/infrastructure/google"
	"github.com/go-auth-api/internal/pkg/hash"
	"github.com/go-auth-api/internal/pkg/id"
	pkgtoken "github.com/go-auth-api/internal/pkg/token"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// Channel selects where the login OTP is delivered: "email" (default) or "sms".
	Channel string `json:"channel" validate:"omitempty,oneof=email sms"`
}

// StartResult is handed back whenever a login flow is opened. The session
// token identifies the pending record; the authorization token is the bearer
// credential the client must present alongside it once the session is
// authorized. PayloadRef is set only on a duplicate-registration conflict and
// lets the client resume OTP verification for the existing account.
type StartResult struct {
	SessionToken       string `json:"session_token,omitempty"`
	AuthorizationToken string `json:"authorization_token,omitempty"`
	PayloadRef         string `json:"payload_ref,omitempty"`
}

// Service coordinates accounts, OTP challenges, and authorization session
// records into the full login flow: open a pending session, challenge the
// user, and promote the session once the challenge is passed.
type Service interface {
	// Register creates a local account and opens its first OTP challenge. If
	// the email is already registered it returns domain.ErrConflict together
	// with a StartResult whose PayloadRef can be fed to ResumeFromRef.
	Register(ctx context.Context, req domain.CreateUserRequest) (*StartResult, error)
	// Login checks credentials, opens a pending session, and issues an OTP.
	Login(ctx context.Context, req LoginRequest) (*StartResult, error)
	// LoginWithGoogle exchanges a verified Google ID token for a session,
	// creating or linking the account as needed. Sessions for verified Google
	// emails skip the OTP challenge and come back already authorized.
	LoginWithGoogle(ctx context.Context, idToken string) (*StartResult, error)
	// ResumeFromRef re-opens an OTP challenge from a conflict payload_ref.
	ResumeFromRef(ctx context.Context, ref, channel string) (*StartResult, error)
	// RequestOTP re-issues a challenge code for an account, replacing any
	// live code and resetting the retry budget. Unregistered emails succeed
	// silently so the endpoint cannot be used to probe for accounts.
	RequestOTP(ctx context.Context, email, channel string) error
	// VerifyOTP consumes the challenge tied to the session's account and
	// promotes the session to authorized.
	VerifyOTP(ctx context.Context, sessionToken, code string) error
	// ActivateAccount marks the account row active and backfills the
	// session's active state. The session must have passed its OTP challenge
	// and the presented bearer must match the stored authorization token;
	// the full session gate cannot apply here since the account is not yet
	// active.
	ActivateAccount(ctx context.Context, sessionToken, authorizationToken string) (*domain.Authorization, error)
	// CheckSession is the protected-route gate: it loads the record, matches
	// the presented bearer against the stored authorization token, lazily
	// backfills an unknown active state, and collapses every rejection into
	// domain.ErrForbidden.
	CheckSession(ctx context.Context, sessionToken, authorizationToken string) (*domain.Authorization, error)
	// Logout revokes the session record.
	Logout(ctx context.Context, sessionToken string) error
}

type userStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type otpService interface {
	Issue(ctx context.Context, email string) error
	IssueSMS(ctx context.Context, email, phone string) error
	Verify(ctx context.Context, email, code string) error
}

type authorizationService interface {
	Create(ctx context.Context, sessionToken, userID, authorizationToken string) error
	Get(ctx context.Context, sessionToken string) (*domain.Authorization, error)
	Activate(ctx context.Context, sessionToken string) error
	MarkActive(ctx context.Context, sessionToken string) (*domain.Authorization, error)
	Revoke(ctx context.Context, sessionToken string) error
}

type tokenSigner interface {
	Sign(userID, role, sessionID string) (string, error)
	SignResumeRef(userID string) (string, error)
	ParseResumeRef(ref string) (string, error)
}

type googleVerifier interface {
	Verify(ctx context.Context, token string) (*google.Payload, error)
}

type service struct {
	users  userStore
	otp    otpService
	authz  authorizationService
	signer tokenSigner
	google googleVerifier
}

type ServiceDeps struct {
	UserRepo       userStore
	OTP            otpService
	Authorizations authorizationService
	Signer         tokenSigner
	Google         googleVerifier
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:  deps.UserRepo,
		otp:    deps.OTP,
		authz:  deps.Authorizations,
		signer: deps.Signer,
		google: deps.Google,
	}
}

func (s *service) Register(ctx context.Context, req domain.CreateUserRequest) (*StartResult, error) {
	if existing, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		// The account exists; hand back a signed reference so the client can
		// jump straight to OTP verification instead of re-registering.
		ref, refErr := s.signer.SignResumeRef(existing.UserID)
		if refErr != nil {
			return nil, refErr
		}
		return &StartResult{PayloadRef: ref}, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	}
	if _, err := s.users.GetByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", domain.ErrConflict)
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(pwHash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         domain.RoleUser,
		AuthProvider: domain.AuthProviderLocal,
		Enable:       false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}

	return s.startChallenge(ctx, u, req.Channel)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*StartResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	return s.startChallenge(ctx, u, req.Channel)
}

func (s *service) LoginWithGoogle(ctx context.Context, idToken string) (*StartResult, error) {
	payload, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	u, err := s.users.GetByEmail(ctx, payload.Email)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		now := time.Now().UTC()
		u = &domain.User{
			UserID:         id.New(),
			Username:       payload.Email,
			Email:          payload.Email,
			FirstName:      payload.FirstName,
			LastName:       payload.LastName,
			Role:           domain.RoleUser,
			AuthProvider:   domain.AuthProviderGoogle,
			GoogleSub:      payload.Sub,
			EmailConfirmed: payload.EmailVerified,
			Enable:         payload.EmailVerified,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.users.Put(ctx, u); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case u.GoogleSub == "":
		// Existing local account; link it to this Google identity.
		if err := s.users.Update(ctx, u.UserID, map[string]interface{}{"google_sub": payload.Sub}); err != nil {
			return nil, err
		}
		u.GoogleSub = payload.Sub
	case u.GoogleSub != payload.Sub:
		return nil, fmt.Errorf("google identity does not match account: %w", domain.ErrUnauthorized)
	}

	res, err := s.startSession(ctx, u)
	if err != nil {
		return nil, err
	}
	if payload.EmailVerified {
		if err := s.authz.Activate(ctx, res.SessionToken); err != nil {
			return nil, err
		}
		if _, err := s.authz.MarkActive(ctx, res.SessionToken); err != nil {
			return nil, err
		}
	} else {
		// Unverified Google email still goes through the OTP challenge.
		if err := s.otp.Issue(ctx, u.Email); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *service) ResumeFromRef(ctx context.Context, ref, channel string) (*StartResult, error) {
	userID, err := s.signer.ParseResumeRef(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid payload_ref: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.startChallenge(ctx, u, channel)
}

func (s *service) RequestOTP(ctx context.Context, email, channel string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			// Public endpoint; answer as if a code was sent so the response
			// never reveals whether the address is registered.
			slog.Debug("otp requested for unregistered email")
			return nil
		}
		return err
	}
	return s.issueChallenge(ctx, u, channel)
}

func (s *service) VerifyOTP(ctx context.Context, sessionToken, code string) error {
	rec, err := s.authz.Get(ctx, sessionToken)
	if err != nil {
		return err
	}
	u, err := s.users.Get(ctx, rec.UserID)
	if err != nil {
		return err
	}

	if err := s.otp.Verify(ctx, u.Email, code); err != nil {
		return err
	}
	if err := s.authz.Activate(ctx, sessionToken); err != nil {
		return err
	}

	if !u.EmailConfirmed {
		// Passing an emailed code proves ownership of the address.
		if err := s.users.Update(ctx, u.UserID, map[string]interface{}{"email_confirmed": true}); err != nil {
			slog.Warn("failed to confirm email after otp", "user_id", u.UserID, "err", err)
		}
	}
	if u.Enable {
		if _, err := s.authz.MarkActive(ctx, sessionToken); err != nil {
			slog.Warn("failed to backfill session active state", "err", err)
		}
	}
	return nil
}

func (s *service) ActivateAccount(ctx context.Context, sessionToken, authorizationToken string) (*domain.Authorization, error) {
	rec, err := s.authz.Get(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no permission: %w", domain.ErrForbidden)
		}
		return nil, err
	}
	if !rec.IsAuthorize || !hash.Equal(rec.AuthorizationToken, authorizationToken) {
		return nil, fmt.Errorf("no permission: %w", domain.ErrForbidden)
	}
	if err := s.users.Update(ctx, rec.UserID, map[string]interface{}{"enable": true}); err != nil {
		return nil, err
	}
	return s.authz.MarkActive(ctx, sessionToken)
}

func (s *service) CheckSession(ctx context.Context, sessionToken, authorizationToken string) (*domain.Authorization, error) {
	rec, err := s.authz.Get(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("no permission: %w", domain.ErrForbidden)
		}
		return nil, err
	}
	// An absent bearer fails the same way a wrong one does.
	if !hash.Equal(rec.AuthorizationToken, authorizationToken) {
		return nil, fmt.Errorf("no permission: %w", domain.ErrForbidden)
	}
	if rec.Active == domain.ActiveUnknown {
		rec, err = s.authz.MarkActive(ctx, sessionToken)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("no permission: %w", domain.ErrForbidden)
			}
			return nil, err
		}
	}
	if !rec.Authorized() {
		return nil, fmt.Errorf("no permission: %w", domain.ErrForbidden)
	}
	return rec, nil
}

func (s *service) Logout(ctx context.Context, sessionToken string) error {
	return s.authz.Revoke(ctx, sessionToken)
}

// startChallenge opens a pending session and issues the OTP in one step.
func (s *service) startChallenge(ctx context.Context, u *domain.User, channel string) (*StartResult, error) {
	res, err := s.startSession(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := s.issueChallenge(ctx, u, channel); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *service) startSession(ctx context.Context, u *domain.User) (*StartResult, error) {
	sessionToken, err := pkgtoken.NewSessionToken()
	if err != nil {
		return nil, err
	}
	authorizationToken, err := s.signer.Sign(u.UserID, u.Role, sessionToken)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Create(ctx, sessionToken, u.UserID, authorizationToken); err != nil {
		return nil, err
	}
	return &StartResult{SessionToken: sessionToken, AuthorizationToken: authorizationToken}, nil
}

func (s *service) issueChallenge(ctx context.Context, u *domain.User, channel string) error {
	if channel == "sms" {
		if u.Phone == nil || *u.Phone == "" {
			return fmt.Errorf("no phone number on account: %w", domain.ErrBadRequest)
		}
		return s.otp.IssueSMS(ctx, u.Email, *u.Phone)
	}
	return s.otp.Issue(ctx, u.Email)
}
