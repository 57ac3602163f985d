package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gearbox/workshop/internal/config"
	"github.com/gearbox/workshop/internal/workshop/entity"
	"github.com/gearbox/workshop/internal/workshop/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	refreshKeyPrefix = "token:refresh:"
	revokedKeyPrefix = "token:revoked:"
)

// AuthService issues and rotates credentials. Verification of inbound
// bearer tokens happens in the JWT middleware; this service only issues.
type AuthService struct {
	customerRepo *repository.CustomerRepository
	mechanicRepo *repository.MechanicRepository
	rdb          *redis.Client
	cfg          *config.Config
}

func NewAuthService(
	customerRepo *repository.CustomerRepository,
	mechanicRepo *repository.MechanicRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		customerRepo: customerRepo,
		mechanicRepo: mechanicRepo,
		rdb:          rdb,
		cfg:          cfg,
	}
}

// TokenPair is the login / refresh response.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginCustomer authenticates a customer by email + password.
func (s *AuthService) LoginCustomer(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	customer, err := s.customerRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown email or wrong password", ErrUnauthenticated)
	}
	if bcrypt.CompareHashAndPassword([]byte(customer.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("%w: unknown email or wrong password", ErrUnauthenticated)
	}
	return s.generateTokenPair(customer.ID, entity.RoleCustomer)
}

// LoginMechanic authenticates a mechanic by email + password. The issued
// role is whatever the mechanic row carries, mechanic or manager.
func (s *AuthService) LoginMechanic(ctx context.Context, req LoginRequest) (*TokenPair, error) {
	mechanic, err := s.mechanicRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown email or wrong password", ErrUnauthenticated)
	}
	if bcrypt.CompareHashAndPassword([]byte(mechanic.PasswordHash), []byte(req.Password)) != nil {
		return nil, fmt.Errorf("%w: unknown email or wrong password", ErrUnauthenticated)
	}
	return s.generateTokenPair(mechanic.ID, mechanic.Role)
}

// generateTokenPair signs an access + refresh token pair. The role is baked
// into the access token at issuance time; a later role change takes effect
// on the next login or refresh.
func (s *AuthService) generateTokenPair(principalID string, role entity.Role) (*TokenPair, error) {
	now := time.Now()
	jti := uuid.New().String()

	accessClaims := jwt.MapClaims{
		"sub":  principalID,
		"role": string(role),
		"iss":  s.cfg.JWT.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWT.AccessTokenExpire).Unix(),
		"jti":  jti,
	}
	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshJti := uuid.New().String()
	refreshClaims := jwt.MapClaims{
		"sub":  principalID,
		"role": string(role),
		"type": "refresh",
		"iss":  s.cfg.JWT.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWT.RefreshTokenExpire).Unix(),
		"jti":  refreshJti,
	}
	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if s.rdb != nil {
		s.rdb.Set(context.Background(), refreshKeyPrefix+refreshJti,
			principalID+"|"+string(role), s.cfg.JWT.RefreshTokenExpire)
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
	}, nil
}

// Refresh rotates the token pair. The old refresh token is single-use.
func (s *AuthService) Refresh(ctx context.Context, refreshTokenString string) (*TokenPair, error) {
	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid refresh token", ErrUnauthenticated)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", ErrUnauthenticated)
	}
	if claims["type"] != "refresh" {
		return nil, fmt.Errorf("%w: not a refresh token", ErrUnauthenticated)
	}

	if s.rdb == nil {
		return nil, fmt.Errorf("%w: refresh token expired or revoked", ErrUnauthenticated)
	}
	jti, _ := claims["jti"].(string)
	stored, err := s.rdb.Get(ctx, refreshKeyPrefix+jti).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: refresh token expired or revoked", ErrUnauthenticated)
	}
	s.rdb.Del(ctx, refreshKeyPrefix+jti)

	principalID, roleStr, found := strings.Cut(stored, "|")
	if !found || !entity.Role(roleStr).Valid() {
		return nil, fmt.Errorf("%w: malformed refresh record", ErrUnauthenticated)
	}
	return s.generateTokenPair(principalID, entity.Role(roleStr))
}

// revocationTTL bounds how long a revoked jti stays on the denylist. A
// token presented without an expiry claim never ages out on its own, so it
// is denylisted for the refresh-token lifetime, the longest-lived
// credential this service issues.
func (s *AuthService) revocationTTL(expiresAt time.Time) time.Duration {
	if expiresAt.IsZero() {
		return s.cfg.JWT.RefreshTokenExpire
	}
	return time.Until(expiresAt)
}

// Logout revokes the presented access token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.rdb == nil || jti == "" {
		return nil
	}
	ttl := s.revocationTTL(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.rdb.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether an access token jti was revoked by logout.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) bool {
	if s.rdb == nil || jti == "" {
		return false
	}
	exists, err := s.rdb.Exists(ctx, revokedKeyPrefix+jti).Result()
	return err == nil && exists > 0
}
