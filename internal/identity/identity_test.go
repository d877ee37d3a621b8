package identity

import (
	"sync"
	"testing"
	"time"

	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/kvstore"
	"auction-storefront/internal/models"
	"auction-storefront/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*Service, *repository.MemoryRepo, *testClock) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.Seed(repository.Fixtures{Users: []models.User{
		{UserID: "user_1", Name: "Alice Wonderland", Email: "alice@example.com", Role: models.RoleCustomer, Status: models.UserActive, PasswordHash: string(hash)},
		{UserID: "user_9", Name: "Charlie Brown", Email: "charlie@example.com", Role: models.RoleCustomer, Status: models.UserSuspended, PasswordHash: string(hash)},
		{UserID: "user_4", Name: "Diana Prince", Email: "diana@example.com", Role: models.RoleCustomer, Status: models.UserPending},
	}})

	clock := &testClock{now: time.Now().UTC()}
	svc := NewService(repo, kvstore.NewMemoryStore(), Options{
		Secret:     []byte("test-secret"),
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
		Now:        clock.Now,
	})
	return svc, repo, clock
}

func TestService_Login(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)

	tests := []struct {
		name          string
		email         string
		password      string
		expectedError error
	}{
		{name: "valid_credentials", email: "alice@example.com", password: "password123"},
		{name: "email_case_insensitive", email: "ALICE@example.com", password: "password123"},
		{name: "wrong_password", email: "alice@example.com", password: "nope", expectedError: biddingerrors.ErrBadCredentials},
		{name: "unknown_email", email: "ghost@example.com", password: "password123", expectedError: biddingerrors.ErrBadCredentials},
		{name: "no_password_set", email: "diana@example.com", password: "", expectedError: biddingerrors.ErrBadCredentials},
		{name: "suspended_account", email: "charlie@example.com", password: "password123", expectedError: biddingerrors.ErrForbidden},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			session, err := svc.Login(tc.email, tc.password)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, session.Token)
			require.Equal(t, "user_1", session.User.UserID)

			user, err := svc.CurrentUser(session.Token)
			require.NoError(t, err)
			require.Equal(t, "user_1", user.UserID)
		})
	}
}

func TestService_Register(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)

	session, err := svc.Register("Eve Adams", "eve@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, models.RoleCustomer, session.User.Role)
	require.Equal(t, models.UserActive, session.User.Status)
	require.NotEqual(t, "secret1", session.User.PasswordHash)

	stored, err := repo.GetUserByEmail("eve@example.com")
	require.NoError(t, err)
	require.Equal(t, session.User.UserID, stored.UserID)

	_, err = svc.Login("eve@example.com", "secret1")
	require.NoError(t, err)

	_, err = svc.Register("Alice Again", "Alice@Example.com", "secret1")
	require.ErrorIs(t, err, biddingerrors.ErrEmailTaken)

	_, err = svc.Register("", "x@example.com", "secret1")
	require.ErrorIs(t, err, biddingerrors.ErrInvalidArgument)
	_, err = svc.Register("Short Pw", "y@example.com", "12345")
	require.ErrorIs(t, err, biddingerrors.ErrInvalidArgument)
}

func TestService_LogoutRevokesToken(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	first, err := svc.Login("alice@example.com", "password123")
	require.NoError(t, err)
	second, err := svc.Login("alice@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(first.Token))
	_, err = svc.CurrentUser(first.Token)
	require.ErrorIs(t, err, biddingerrors.ErrInvalidToken)
	require.NoError(t, svc.Logout(first.Token), "logging out twice is fine")

	_, err = svc.CurrentUser(second.Token)
	require.NoError(t, err, "other sessions stay valid")
}

func TestService_CurrentUserRejectsBadTokens(t *testing.T) {
	t.Parallel()

	svc, repo, clock := newTestService(t)
	session, err := svc.Login("alice@example.com", "password123")
	require.NoError(t, err)

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "x", Subject: "user_1", ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour))},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "x", Subject: "user_1"},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not.a.token"},
		{name: "wrong_secret", token: foreign},
		{name: "alg_none", token: unsigned},
		{name: "tampered", token: session.Token + "x"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CurrentUser(tc.token)
			require.ErrorIs(t, err, biddingerrors.ErrInvalidToken)
		})
	}

	t.Run("suspended_after_login", func(t *testing.T) {
		u, err := repo.GetUser("user_1")
		require.NoError(t, err)
		u.Status = models.UserSuspended
		require.NoError(t, repo.SaveUser(u))

		_, err = svc.CurrentUser(session.Token)
		require.ErrorIs(t, err, biddingerrors.ErrForbidden)

		u.Status = models.UserActive
		require.NoError(t, repo.SaveUser(u))
	})

	t.Run("expired", func(t *testing.T) {
		clock.Advance(2 * time.Hour)
		_, err := svc.CurrentUser(session.Token)
		require.ErrorIs(t, err, biddingerrors.ErrInvalidToken)
	})
}

func TestBidderFor(t *testing.T) {
	t.Parallel()

	require.True(t, BidderFor(nil).Anonymous())

	b := BidderFor(&models.User{UserID: "user_1", Name: "Alice Wonderland"})
	require.False(t, b.Anonymous())
	require.Equal(t, "user_1", b.ID)
	require.Equal(t, "Alice Wonderland", b.DisplayName)
}
