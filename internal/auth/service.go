package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/noah-isme/backend-tour/internal/common"
	"github.com/noah-isme/backend-tour/internal/domain"
)

const (
	defaultAccessTTL = 8 * time.Hour

	claimRole        = "role"
	claimPermissions = "permissions"

	msgBadCredentials = "Email hoặc mật khẩu không đúng"
	msgInactive       = "Tài khoản đã bị khóa"
)

// Users loads accounts for authentication.
type Users interface {
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	GetUserByID(ctx context.Context, id string) (domain.User, error)
}

// Service authenticates back-office accounts and issues access tokens.
type Service struct {
	users     Users
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
	validator TokenValidator
	issuer    string
	audience  string
	clockSkew time.Duration
}

// Config configures the auth service.
type Config struct {
	Users          Users
	Secret         string
	AccessTokenTTL time.Duration
	Issuer         string
	Audience       string
	ClockSkew      time.Duration
}

// LoginResult bundles the token returned after a successful login.
type LoginResult struct {
	User         domain.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	AccessExpiry time.Time   `json:"accessExpiresAt"`
}

// NewService constructs a Service instance with sane defaults.
func NewService(cfg Config) (*Service, error) {
	if cfg.Users == nil {
		return nil, errors.New("auth: users store is required")
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errors.New("auth: secret is required")
	}
	accessTTL := cfg.AccessTokenTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = "backend-tour"
	}
	audience := strings.TrimSpace(cfg.Audience)
	if audience == "" {
		audience = "tour-admin"
	}
	clockSkew := max(cfg.ClockSkew, 0)

	return &Service{
		users:     cfg.Users,
		secret:    []byte(secret),
		accessTTL: accessTTL,
		now:       time.Now,
		validator: TokenValidator{
			Issuer:    issuer,
			Audience:  audience,
			ClockSkew: clockSkew,
			Algorithm: jwa.HS256,
		},
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
	}, nil
}

// WithNow allows tests to override the time provider.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Login checks the credentials and signs an access token carrying the
// account's role and permission tokens.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, common.Validation(msgBadCredentials)
	}
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return LoginResult{}, common.Unauthorized(msgBadCredentials, nil)
		}
		return LoginResult{}, fmt.Errorf("load user: %w", err)
	}
	ok, err := argon2id.ComparePasswordAndHash(password, u.PasswordHash)
	if err != nil {
		return LoginResult{}, fmt.Errorf("compare password: %w", err)
	}
	if !ok {
		return LoginResult{}, common.Unauthorized(msgBadCredentials, nil)
	}
	if u.Status == domain.UserStatusInactive {
		return LoginResult{}, common.Unauthorized(msgInactive, nil)
	}
	token, expiry, err := s.signAccessToken(u)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}
	return LoginResult{User: u, AccessToken: token, AccessExpiry: expiry}, nil
}

// Me returns the account behind an authenticated principal.
func (s *Service) Me(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, common.Unauthorized(common.MsgUnauthorized, err)
		}
		return domain.User{}, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

// ParseAccessToken validates an access token and returns the principal it names.
func (s *Service) ParseAccessToken(token string) (common.Principal, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return common.Principal{}, common.Unauthorized(common.MsgUnauthorized, nil)
	}
	algorithm, err := extractTokenAlgorithm(trimmed)
	if err != nil {
		return common.Principal{}, common.Unauthorized(common.MsgUnauthorized, err)
	}
	if algorithm != s.validator.Algorithm {
		return common.Principal{}, common.Unauthorized(common.MsgUnauthorized, fmt.Errorf("unexpected token algorithm %s", algorithm))
	}
	parsed, err := jwt.ParseString(trimmed, jwt.WithKey(algorithm, s.secret), jwt.WithValidate(false))
	if err != nil {
		return common.Principal{}, common.Unauthorized(common.MsgUnauthorized, err)
	}
	if err := s.validator.Validate(parsed, algorithm, s.now()); err != nil {
		return common.Principal{}, common.Unauthorized(common.MsgUnauthorized, err)
	}
	role, _ := claimString(parsed, claimRole)
	return common.NewPrincipal(parsed.Subject(), role, claimStrings(parsed, claimPermissions)), nil
}

func extractTokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	message, err := jws.ParseString(token)
	if err != nil {
		return "", err
	}
	signatures := message.Signatures()
	if len(signatures) != 1 {
		return "", errors.New("auth: expected exactly one signature")
	}
	headers := signatures[0].ProtectedHeaders()
	if headers == nil {
		return "", errors.New("auth: token missing protected headers")
	}
	alg := headers.Algorithm()
	if alg == "" || alg == jwa.NoSignature {
		return "", errors.New("auth: token missing algorithm")
	}
	return alg, nil
}

func (s *Service) signAccessToken(u domain.User) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.accessTTL)
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	token, err := jwt.NewBuilder().
		Subject(u.ID).
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		IssuedAt(now).
		NotBefore(now.Add(-s.clockSkew)).
		Expiration(expiresAt).
		Claim(claimRole, u.Role).
		Claim(claimPermissions, perms).
		Build()
	if err != nil {
		return "", time.Time{}, err
	}
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, s.secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return string(signed), expiresAt, nil
}

func claimString(tok jwt.Token, name string) (string, bool) {
	v, ok := tok.Get(name)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func claimStrings(tok jwt.Token, name string) []string {
	v, ok := tok.Get(name)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// HashPassword derives an argon2id hash for storage.
func HashPassword(password string) (string, error) {
	return argon2id.CreateHash(password, argon2id.DefaultParams)
}
