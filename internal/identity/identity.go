package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"auction-storefront/internal/auction"
	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/kvstore"
	"auction-storefront/internal/models"
	"auction-storefront/internal/repository"
	"auction-storefront/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultTokenTTL = 24 * time.Hour
	sessionPrefix   = "session:"
	minPasswordLen  = 6
)

// Claims are carried by every session token
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

type sessionRecord struct {
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Options configures token signing and password hashing
type Options struct {
	Secret     []byte
	TokenTTL   time.Duration
	BcryptCost int
	Now        func() time.Time
}

// Service registers and signs users in. Tokens are HS256 JWTs whose ID must
// still be present in the session store, so logging out revokes them.
type Service struct {
	users    repository.UserDB
	sessions kvstore.Store
	opts     Options
}

// NewService creates an identity service
func NewService(users repository.UserDB, sessions kvstore.Store, opts Options) *Service {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{users: users, sessions: sessions, opts: opts}
}

// Session is a signed-in user and the token proving it
type Session struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// Register creates a customer account and signs it in
func (s *Service) Register(name, email, password string) (Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || len(password) < minPasswordLen {
		return Session{}, fmt.Errorf("identity: %w - name, email and a password of at least %d characters are required", biddingerrors.ErrInvalidArgument, minPasswordLen)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return Session{}, fmt.Errorf("identity: failed to hash password: %w", err)
	}

	user := models.User{
		UserID:       utils.GeneratePrefixedID("user"),
		Name:         name,
		Email:        email,
		Role:         models.RoleCustomer,
		Status:       models.UserActive,
		PasswordHash: string(hash),
		JoinedAt:     s.opts.Now().UTC(),
	}
	if err := s.users.CreateUser(user); err != nil {
		return Session{}, fmt.Errorf("identity: register %s: %w", email, err)
	}

	utils.Info("user registered", map[string]any{"user_id": user.UserID})
	return s.issue(user)
}

// Login checks credentials and opens a session. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Login(email, password string) (Session, error) {
	user, err := s.users.GetUserByEmail(strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, biddingerrors.ErrUserNotFound) {
			return Session{}, fmt.Errorf("identity: %w", biddingerrors.ErrBadCredentials)
		}
		return Session{}, fmt.Errorf("identity: failed to look up user: %w", err)
	}
	if user.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Session{}, fmt.Errorf("identity: %w", biddingerrors.ErrBadCredentials)
	}
	if user.Status == models.UserSuspended {
		return Session{}, fmt.Errorf("identity: %w - account suspended", biddingerrors.ErrForbidden)
	}
	return s.issue(user)
}

func (s *Service) issue(user models.User) (Session, error) {
	now := s.opts.Now()
	expires := now.Add(s.opts.TokenTTL)
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        utils.GenerateID(),
			Subject:   user.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
	if err != nil {
		return Session{}, fmt.Errorf("identity: failed to sign token: %w", err)
	}
	if err := s.sessions.Save(sessionPrefix+claims.ID, sessionRecord{UserID: user.UserID, ExpiresAt: expires}); err != nil {
		return Session{}, fmt.Errorf("identity: failed to store session: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires.UTC(), User: user}, nil
}

func (s *Service) parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.opts.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.opts.Now))
	if err != nil {
		return nil, fmt.Errorf("identity: %w - %v", biddingerrors.ErrInvalidToken, err)
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, fmt.Errorf("identity: %w - missing subject or id", biddingerrors.ErrInvalidToken)
	}
	return claims, nil
}

// CurrentUser resolves the user behind a token
func (s *Service) CurrentUser(token string) (models.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return models.User{}, err
	}

	var rec sessionRecord
	if err := s.sessions.Load(sessionPrefix+claims.ID, &rec); err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return models.User{}, fmt.Errorf("identity: %w - session ended", biddingerrors.ErrInvalidToken)
		}
		return models.User{}, fmt.Errorf("identity: failed to load session: %w", err)
	}
	if rec.UserID != claims.Subject {
		return models.User{}, fmt.Errorf("identity: %w - session mismatch", biddingerrors.ErrInvalidToken)
	}

	user, err := s.users.GetUser(claims.Subject)
	if err != nil {
		return models.User{}, fmt.Errorf("identity: %w - %v", biddingerrors.ErrInvalidToken, err)
	}
	if user.Status == models.UserSuspended {
		return models.User{}, fmt.Errorf("identity: %w - account suspended", biddingerrors.ErrForbidden)
	}
	return user, nil
}

// Logout revokes the token's session. Logging out twice is not an error.
func (s *Service) Logout(token string) error {
	claims, err := s.parse(token)
	if err != nil {
		return err
	}
	if err := s.sessions.Clear(sessionPrefix + claims.ID); err != nil {
		return fmt.Errorf("identity: failed to end session: %w", err)
	}
	utils.Info("user logged out", map[string]any{"user_id": claims.Subject})
	return nil
}

// BidderFor maps a signed-in user to an auction bidder; nil is anonymous
func BidderFor(user *models.User) auction.Bidder {
	if user == nil {
		return auction.Bidder{}
	}
	return auction.Bidder{ID: user.UserID, DisplayName: user.Name}
}
