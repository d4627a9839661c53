package auth

import (
	"context"
	"errors"
	"time"

	"backend-travelapp/internal/db"
	"backend-travelapp/internal/shared/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAccessTokenTTL  = 8 * time.Hour
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

var errInvalidCredentials = apperr.Wrap(apperr.ErrUnauthenticated, errors.New("invalid credentials"))

type Service struct {
	secret     []byte
	db         db.Querier
	accessTTL  time.Duration
	refreshTTL time.Duration
	limiter    *LoginLimiter
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func NewService(secret string, db db.Querier) *Service {
	return &Service{
		secret:     []byte(secret),
		db:         db,
		accessTTL:  defaultAccessTokenTTL,
		refreshTTL: defaultRefreshTokenTTL,
	}
}

// WithTTL overrides token lifetimes; zero values keep the defaults.
func (s *Service) WithTTL(access, refresh time.Duration) *Service {
	if access > 0 {
		s.accessTTL = access
	}
	if refresh > 0 {
		s.refreshTTL = refresh
	}
	return s
}

func (s *Service) WithLimiter(l *LoginLimiter) *Service {
	s.limiter = l
	return s
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (Identity, TokenResponse, error) {
	if !s.limiter.Allow(ctx, req.Email) {
		return Identity{}, TokenResponse{}, apperr.ErrRateLimited
	}

	row := s.db.QueryRow(ctx, `
		SELECT id, username, email, password_hash
		FROM users WHERE email = $1
	`, req.Email)

	var id Identity
	var hash string
	if err := row.Scan(&id.UserID, &id.Username, &id.Email, &hash); err != nil {
		if db.IsNoRows(err) {
			return Identity{}, TokenResponse{}, errInvalidCredentials
		}
		return Identity{}, TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return Identity{}, TokenResponse{}, errInvalidCredentials
	}

	tokens, err := s.GenerateTokens(ctx, id)
	if err != nil {
		return Identity{}, TokenResponse{}, err
	}
	return id, tokens, nil
}

func (s *Service) GenerateTokens(ctx context.Context, id Identity) (TokenResponse, error) {
	access, err := signTokenFn(s, id, s.accessTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	refresh, err := signTokenFn(s, id, s.refreshTTL)
	if err != nil {
		return TokenResponse{}, err
	}

	if err := s.saveRefreshToken(ctx, refresh, id.UserID, s.refreshTTL); err != nil {
		return TokenResponse{}, err
	}

	return TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// Refresh exchanges a valid refresh token for a new pair and revokes the old
// refresh token.
func (s *Service) Refresh(ctx context.Context, token string) (TokenResponse, error) {
	id, err := s.ValidateRefreshToken(ctx, token)
	if err != nil {
		return TokenResponse{}, err
	}
	if err := s.Revoke(ctx, token); err != nil {
		return TokenResponse{}, err
	}
	return s.GenerateTokens(ctx, id)
}

func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (Identity, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return Identity{}, err
	}

	userID, expiresAt, err := s.lookupRefreshToken(ctx, token)
	if err != nil || userID != claims.UserID || time.Now().After(expiresAt) {
		return Identity{}, apperr.Wrap(apperr.ErrUnauthenticated, errors.New("refresh token invalid"))
	}
	return claims.identity(), nil
}

func (s *Service) ValidateAccessToken(token string) (Identity, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return Identity{}, err
	}
	return claims.identity(), nil
}

// Revoke marks a refresh token as unusable. Revoking an unknown or already
// revoked token is not an error.
func (s *Service) Revoke(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE refresh_tokens SET revoked_at = NOW()
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	return err
}

var signTokenFn = (*Service).signToken

func (s *Service) signToken(id Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   id.UserID,
		Username: id.Username,
		Email:    id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

var parseWithClaimsFn = jwt.ParseWithClaims

func (s *Service) parseToken(token string) (*Claims, error) {
	parsed, err := parseWithClaimsFn(token, &Claims{}, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrUnauthenticated, err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == "" {
		return nil, apperr.Wrap(apperr.ErrUnauthenticated, errors.New("token invalid"))
	}
	return claims, nil
}

func (c *Claims) identity() Identity {
	return Identity{UserID: c.UserID, Username: c.Username, Email: c.Email}
}

func (s *Service) saveRefreshToken(ctx context.Context, token, userID string, ttl time.Duration) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1,$2,$3,$4)
	`, uuid.NewString(), userID, token, time.Now().Add(ttl))
	return err
}

func (s *Service) lookupRefreshToken(ctx context.Context, token string) (string, time.Time, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, expires_at
		FROM refresh_tokens
		WHERE token = $1 AND revoked_at IS NULL
	`, token)
	var userID string
	var expiresAt time.Time
	if err := row.Scan(&userID, &expiresAt); err != nil {
		return "", time.Time{}, err
	}
	return userID, expiresAt, nil
}
