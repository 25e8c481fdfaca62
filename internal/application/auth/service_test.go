package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/go-auth-api/internal/domain"
	"github.com/go-auth-api/internal/infrastructure/google"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

type mockOTPService struct{ mock.Mock }

func (m *mockOTPService) Issue(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *mockOTPService) IssueSMS(ctx context.Context, email, phone string) error {
	return m.Called(ctx, email, phone).Error(0)
}
func (m *mockOTPService) Verify(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

type mockAuthzService struct{ mock.Mock }

func (m *mockAuthzService) Create(ctx context.Context, sessionToken, userID, authorizationToken string) error {
	return m.Called(ctx, sessionToken, userID, authorizationToken).Error(0)
}
func (m *mockAuthzService) Get(ctx context.Context, sessionToken string) (*domain.Authorization, error) {
	args := m.Called(ctx, sessionToken)
	if a, _ := args.Get(0).(*domain.Authorization); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthzService) Activate(ctx context.Context, sessionToken string) error {
	return m.Called(ctx, sessionToken).Error(0)
}
func (m *mockAuthzService) MarkActive(ctx context.Context, sessionToken string) (*domain.Authorization, error) {
	args := m.Called(ctx, sessionToken)
	if a, _ := args.Get(0).(*domain.Authorization); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthzService) Revoke(ctx context.Context, sessionToken string) error {
	return m.Called(ctx, sessionToken).Error(0)
}

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}
func (m *mockSigner) SignResumeRef(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
func (m *mockSigner) ParseResumeRef(ref string) (string, error) {
	args := m.Called(ref)
	return args.String(0), args.Error(1)
}

type mockGoogleVerifier struct{ mock.Mock }

func (m *mockGoogleVerifier) Verify(ctx context.Context, token string) (*google.Payload, error) {
	args := m.Called(ctx, token)
	if p, _ := args.Get(0).(*google.Payload); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- builder ---

func newCoordinator(us *mockUserStore, otp *mockOTPService, az *mockAuthzService, sg *mockSigner, gv *mockGoogleVerifier) Service {
	return NewService(ServiceDeps{
		UserRepo:       us,
		OTP:            otp,
		Authorizations: az,
		Signer:         sg,
		Google:         gv,
	})
}

func bcryptHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// --- Register ---

func TestRegister_DuplicateEmail_ReturnsConflictWithPayloadRef(t *testing.T) {
	us := &mockUserStore{}
	sg := &mockSigner{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	sg.On("SignResumeRef", "u1").Return("signed-ref", nil)

	svc := newCoordinator(us, nil, nil, sg, nil)
	result, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Username: "alice", Password: "password123", Email: "a@b.com",
		FirstName: "A", LastName: "B",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	require.NotNil(t, result)
	assert.Equal(t, "signed-ref", result.PayloadRef)
	assert.Empty(t, result.SessionToken)
}

func TestRegister_DuplicateUsername_ReturnsConflict(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	us.On("GetByUsername", mock.Anything, "alice").Return(&domain.User{UserID: "u2"}, nil)

	svc := newCoordinator(us, nil, nil, nil, nil)
	result, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Username: "alice", Password: "password123", Email: "a@b.com",
		FirstName: "A", LastName: "B",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.Nil(t, result)
}

func TestRegister_HappyPath_OpensPendingSessionAndIssuesOTP(t *testing.T) {
	us := &mockUserStore{}
	otp := &mockOTPService{}
	az := &mockAuthzService{}
	sg := &mockSigner{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	us.On("GetByUsername", mock.Anything, "alice").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "a@b.com" && !u.Enable && u.Role == domain.RoleUser &&
			u.AuthProvider == domain.AuthProviderLocal && u.PasswordHash != "password123"
	})).Return(nil)
	sg.On("Sign", mock.Anything, domain.RoleUser, mock.Anything).Return("bearer-token", nil)
	az.On("Create", mock.Anything, mock.Anything, mock.Anything, "bearer-token").Return(nil)
	otp.On("Issue", mock.Anything, "a@b.com").Return(nil)

	svc := newCoordinator(us, otp, az, sg, nil)
	result, err := svc.Register(context.Background(), domain.CreateUserRequest{
		Username: "alice", Password: "password123", Email: "a@b.com",
		FirstName: "A", LastName: "B",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionToken)
	assert.Equal(t, "bearer-token", result.AuthorizationToken)
	us.AssertExpectations(t)
	az.AssertExpectations(t)
	otp.AssertExpectations(t)
}

// --- Login ---

func TestLogin_UnknownEmail_ReturnsUnauthorized(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newCoordinator(us, nil, nil, nil, nil)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "x@x.com", Password: "whatever"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_WrongPassword_ReturnsUnauthorized(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", PasswordHash: bcryptHash(t, "correct-password"),
	}, nil)

	svc := newCoordinator(us, nil, nil, nil, nil)
	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "wrong-password"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_HappyPath_DeliversChallengeOnRequestedChannel(t *testing.T) {
	us := &mockUserStore{}
	otp := &mockOTPService{}
	az := &mockAuthzService{}
	sg := &mockSigner{}

	phone := "+15550001111"
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", Phone: &phone, Role: domain.RoleUser,
		PasswordHash: bcryptHash(t, "password123"),
	}, nil)
	sg.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer-token", nil)
	az.On("Create", mock.Anything, mock.Anything, "u1", "bearer-token").Return(nil)
	otp.On("IssueSMS", mock.Anything, "a@b.com", phone).Return(nil)

	svc := newCoordinator(us, otp, az, sg, nil)
	result, err := svc.Login(context.Background(), LoginRequest{
		Email: "a@b.com", Password: "password123", Channel: "sms",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionToken)
	otp.AssertExpectations(t)
}

func TestLogin_SMSChannelWithoutPhone_ReturnsBadRequest(t *testing.T) {
	us := &mockUserStore{}
	az := &mockAuthzService{}
	sg := &mockSigner{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", Role: domain.RoleUser,
		PasswordHash: bcryptHash(t, "password123"),
	}, nil)
	sg.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer-token", nil)
	az.On("Create", mock.Anything, mock.Anything, "u1", "bearer-token").Return(nil)

	svc := newCoordinator(us, nil, az, sg, nil)
	_, err := svc.Login(context.Background(), LoginRequest{
		Email: "a@b.com", Password: "password123", Channel: "sms",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- LoginWithGoogle ---

func TestLoginWithGoogle_VerifiedEmail_SkipsOTP(t *testing.T) {
	us := &mockUserStore{}
	az := &mockAuthzService{}
	sg := &mockSigner{}
	gv := &mockGoogleVerifier{}

	gv.On("Verify", mock.Anything, "id-token").Return(&google.Payload{
		Sub: "sub-1", Email: "g@b.com", EmailVerified: true,
	}, nil)
	us.On("GetByEmail", mock.Anything, "g@b.com").Return(&domain.User{
		UserID: "u1", Email: "g@b.com", GoogleSub: "sub-1", Role: domain.RoleUser, Enable: true,
	}, nil)
	sg.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer-token", nil)
	az.On("Create", mock.Anything, mock.Anything, "u1", "bearer-token").Return(nil)
	az.On("Activate", mock.Anything, mock.Anything).Return(nil)
	az.On("MarkActive", mock.Anything, mock.Anything).Return(&domain.Authorization{
		UserID: "u1", IsAuthorize: true, Active: domain.ActiveYes,
	}, nil)

	svc := newCoordinator(us, nil, az, sg, gv)
	result, err := svc.LoginWithGoogle(context.Background(), "id-token")

	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionToken)
	az.AssertExpectations(t)
}

func TestLoginWithGoogle_SubMismatch_ReturnsUnauthorized(t *testing.T) {
	us := &mockUserStore{}
	gv := &mockGoogleVerifier{}

	gv.On("Verify", mock.Anything, "id-token").Return(&google.Payload{
		Sub: "sub-other", Email: "g@b.com", EmailVerified: true,
	}, nil)
	us.On("GetByEmail", mock.Anything, "g@b.com").Return(&domain.User{
		UserID: "u1", GoogleSub: "sub-1",
	}, nil)

	svc := newCoordinator(us, nil, nil, nil, gv)
	_, err := svc.LoginWithGoogle(context.Background(), "id-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLoginWithGoogle_NewAccount_IsCreated(t *testing.T) {
	us := &mockUserStore{}
	az := &mockAuthzService{}
	sg := &mockSigner{}
	gv := &mockGoogleVerifier{}

	gv.On("Verify", mock.Anything, "id-token").Return(&google.Payload{
		Sub: "sub-1", Email: "new@b.com", EmailVerified: true, FirstName: "N", LastName: "U",
	}, nil)
	us.On("GetByEmail", mock.Anything, "new@b.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.AuthProvider == domain.AuthProviderGoogle && u.GoogleSub == "sub-1" && u.Enable
	})).Return(nil)
	sg.On("Sign", mock.Anything, domain.RoleUser, mock.Anything).Return("bearer-token", nil)
	az.On("Create", mock.Anything, mock.Anything, mock.Anything, "bearer-token").Return(nil)
	az.On("Activate", mock.Anything, mock.Anything).Return(nil)
	az.On("MarkActive", mock.Anything, mock.Anything).Return(&domain.Authorization{
		IsAuthorize: true, Active: domain.ActiveYes,
	}, nil)

	svc := newCoordinator(us, nil, az, sg, gv)
	_, err := svc.LoginWithGoogle(context.Background(), "id-token")

	require.NoError(t, err)
	us.AssertExpectations(t)
}

// --- ResumeFromRef ---

func TestResumeFromRef_InvalidRef_ReturnsUnauthorized(t *testing.T) {
	sg := &mockSigner{}
	sg.On("ParseResumeRef", "bad-ref").Return("", errors.New("bad signature"))

	svc := newCoordinator(nil, nil, nil, sg, nil)
	_, err := svc.ResumeFromRef(context.Background(), "bad-ref", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestResumeFromRef_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	otp := &mockOTPService{}
	az := &mockAuthzService{}
	sg := &mockSigner{}

	sg.On("ParseResumeRef", "good-ref").Return("u1", nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", Role: domain.RoleUser,
	}, nil)
	sg.On("Sign", "u1", domain.RoleUser, mock.Anything).Return("bearer-token", nil)
	az.On("Create", mock.Anything, mock.Anything, "u1", "bearer-token").Return(nil)
	otp.On("Issue", mock.Anything, "a@b.com").Return(nil)

	svc := newCoordinator(us, otp, az, sg, nil)
	result, err := svc.ResumeFromRef(context.Background(), "good-ref", "")

	require.NoError(t, err)
	assert.NotEmpty(t, result.SessionToken)
	otp.AssertExpectations(t)
}

// --- RequestOTP ---

func TestRequestOTP_KnownEmail_IssuesCode(t *testing.T) {
	us := &mockUserStore{}
	otp := &mockOTPService{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com",
	}, nil)
	otp.On("Issue", mock.Anything, "a@b.com").Return(nil)

	svc := newCoordinator(us, otp, nil, nil, nil)
	require.NoError(t, svc.RequestOTP(context.Background(), "a@b.com", ""))
	otp.AssertExpectations(t)
}

func TestRequestOTP_UnknownEmail_SucceedsWithoutIssuing(t *testing.T) {
	us := &mockUserStore{}
	otp := &mockOTPService{}

	us.On("GetByEmail", mock.Anything, "ghost@b.com").Return(nil, domain.ErrNotFound)

	svc := newCoordinator(us, otp, nil, nil, nil)
	require.NoError(t, svc.RequestOTP(context.Background(), "ghost@b.com", ""))
	otp.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
	otp.AssertNotCalled(t, "IssueSMS", mock.Anything, mock.Anything, mock.Anything)
}

func TestRequestOTP_BackendFailure_Propagates(t *testing.T) {
	us := &mockUserStore{}

	us.On("GetByEmail", mock.Anything, "a@b.com").
		Return(nil, fmt.Errorf("%w: connection refused", domain.ErrUnavailable))

	svc := newCoordinator(us, &mockOTPService{}, nil, nil, nil)
	err := svc.RequestOTP(context.Background(), "a@b.com", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

// --- VerifyOTP ---

func TestVerifyOTP_PromotesSessionAndConfirmsEmail(t *testing.T) {
	us := &mockUserStore{}
	otp := &mockOTPService{}
	az := &mockAuthzService{}

	az.On("Get", mock.Anything, "sess-1").Return(&domain.Authorization{UserID: "u1"}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", EmailConfirmed: false, Enable: false,
	}, nil)
	otp.On("Verify", mock.Anything, "a@b.com", "123456").Return(nil)
	az.On("Activate", mock.Anything, "sess-1").Return(nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"email_confirmed": true}).Return(nil)

	svc := newCoordinator(us, otp, az, nil, nil)
	err := svc.VerifyOTP(context.Background(), "sess-1", "123456")

	require.NoError(t, err)
	az.AssertExpectations(t)
	us.AssertExpectations(t)
}

func TestVerifyOTP_WrongCode_DoesNotPromote(t *testing.T) {
	us := &mockUserStore{}
	otp := &mockOTPService{}
	az := &mockAuthzService{}

	az.On("Get", mock.Anything, "sess-1").Return(&domain.Authorization{UserID: "u1"}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Email: "a@b.com"}, nil)
	otp.On("Verify", mock.Anything, "a@b.com", "000000").Return(domain.ErrUnauthorized)

	svc := newCoordinator(us, otp, az, nil, nil)
	err := svc.VerifyOTP(context.Background(), "sess-1", "000000")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	az.AssertNotCalled(t, "Activate", mock.Anything, mock.Anything)
}

// --- ActivateAccount ---

func TestActivateAccount_UnauthorizedSession_ReturnsForbidden(t *testing.T) {
	az := &mockAuthzService{}
	az.On("Get", mock.Anything, "sess-1").Return(&domain.Authorization{
		UserID: "u1", AuthorizationToken: "bearer-token", IsAuthorize: false,
	}, nil)

	svc := newCoordinator(nil, nil, az, nil, nil)
	_, err := svc.ActivateAccount(context.Background(), "sess-1", "bearer-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestActivateAccount_BearerMismatch_ReturnsForbidden(t *testing.T) {
	az := &mockAuthzService{}
	az.On("Get", mock.Anything, "sess-1").Return(&domain.Authorization{
		UserID: "u1", AuthorizationToken: "bearer-token", IsAuthorize: true,
	}, nil)

	svc := newCoordinator(nil, nil, az, nil, nil)
	_, err := svc.ActivateAccount(context.Background(), "sess-1", "other-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestActivateAccount_HappyPath_EnablesAccount(t *testing.T) {
	us := &mockUserStore{}
	az := &mockAuthzService{}

	az.On("Get", mock.Anything, "sess-1").Return(&domain.Authorization{
		UserID: "u1", AuthorizationToken: "bearer-token", IsAuthorize: true,
	}, nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"enable": true}).Return(nil)
	az.On("MarkActive", mock.Anything, "sess-1").Return(&domain.Authorization{
		UserID: "u1", IsAuthorize: true, Active: domain.ActiveYes, Roles: []string{domain.RoleUser},
	}, nil)

	svc := newCoordinator(us, nil, az, nil, nil)
	rec, err := svc.ActivateAccount(context.Background(), "sess-1", "bearer-token")

	require.NoError(t, err)
	assert.True(t, rec.Authorized())
	us.AssertExpectations(t)
}

// --- CheckSession ---

func TestCheckSession_MissingRecord_CollapsesToForbidden(t *testing.T) {
	az := &mockAuthzService{}
	az.On("Get", mock.Anything, "gone").Return(nil, domain.ErrNotFound)

	svc := newCoordinator(nil, nil, az, nil, nil)
	_, err := svc.CheckSession(context.Background(), "gone", "bearer-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCheckSession_BearerMismatch_CollapsesToForbidden(t *testing.T) {
	az := &mockAuthzService{}
	az.On("Get", mock.Anything, "sess-1").Return(&domain.Authorization{
		AuthorizationToken: "bearer-token", IsAuthorize: true, Active: domain.ActiveYes,
	}, nil)

	svc := newCoordinator(nil, nil, az, nil, nil)
	_, err := svc.CheckSession(context.Background(), "sess-1", "forged-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCheckSession_EmptyBearer_CollapsesToForbidden(t *testing.T) {
	az := &mockAuthzService{}
	az.On("Get", mock.Anything, "sess-1").Return(&domain.Authorization{
		AuthorizationToken: "bearer-token", IsAuthorize: true, Active: domain.ActiveYes,
	}, nil)

	svc := newCoordinator(nil, nil, az, nil, nil)
	_, err := svc.CheckSession(context.Background(), "sess-1", "")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCheckSession_UnknownActive_TriggersBackfill(t *testing.T) {
	az := &mockAuthzService{}
	az.On("Get", mock.Anything, "sess-1").Return(&domain.Authorization{
		UserID: "u1", AuthorizationToken: "bearer-token", IsAuthorize: true,
		Active: domain.ActiveUnknown,
	}, nil)
	az.On("MarkActive", mock.Anything, "sess-1").Return(&domain.Authorization{
		UserID: "u1", AuthorizationToken: "bearer-token", IsAuthorize: true,
		Active: domain.ActiveYes, Roles: []string{domain.RoleUser},
	}, nil)

	svc := newCoordinator(nil, nil, az, nil, nil)
	rec, err := svc.CheckSession(context.Background(), "sess-1", "bearer-token")

	require.NoError(t, err)
	assert.Equal(t, domain.ActiveYes, rec.Active)
	az.AssertExpectations(t)
}

func TestCheckSession_DisabledAccount_CollapsesToForbidden(t *testing.T) {
	az := &mockAuthzService{}
	az.On("Get", mock.Anything, "sess-1").Return(&domain.Authorization{
		UserID: "u1", AuthorizationToken: "bearer-token", IsAuthorize: true,
		Active: domain.ActiveNo,
	}, nil)

	svc := newCoordinator(nil, nil, az, nil, nil)
	_, err := svc.CheckSession(context.Background(), "sess-1", "bearer-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestCheckSession_PendingSession_CollapsesToForbidden(t *testing.T) {
	az := &mockAuthzService{}
	az.On("Get", mock.Anything, "sess-1").Return(&domain.Authorization{
		UserID: "u1", AuthorizationToken: "bearer-token", IsAuthorize: false,
		Active: domain.ActiveYes,
	}, nil)

	svc := newCoordinator(nil, nil, az, nil, nil)
	_, err := svc.CheckSession(context.Background(), "sess-1", "bearer-token")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

// --- Logout ---

func TestLogout_RevokesSession(t *testing.T) {
	az := &mockAuthzService{}
	az.On("Revoke", mock.Anything, "sess-1").Return(nil)

	svc := newCoordinator(nil, nil, az, nil, nil)
	require.NoError(t, svc.Logout(context.Background(), "sess-1"))
	az.AssertExpectations(t)
}
