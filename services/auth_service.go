package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fieldpro-backend/config"
	"fieldpro-backend/models"
	"fieldpro-backend/repository"
	"fieldpro-backend/utils"
)

// MagicLinkMailer delivers a one-time login URL. clients.EmailGateway
// implements it; tests substitute a recorder.
type MagicLinkMailer interface {
	SendMagicLink(ctx context.Context, to, loginURL string) error
}

// AuthService owns account signup and both login paths: password and
// magic link. Magic link state - single-use tokens, per-email rate
// limits, per-IP enumeration counters - lives in Redis with TTLs, not
// in the database.
type AuthService struct {
	store  *repository.Store
	redis  *redis.Client
	mailer MagicLinkMailer
	cfg    *config.Config
	audit  *AuditService
	logger *zap.Logger
}

func NewAuthService(store *repository.Store, rdb *redis.Client, mailer MagicLinkMailer, cfg *config.Config, audit *AuditService, logger *zap.Logger) *AuthService {
	return &AuthService{store: store, redis: rdb, mailer: mailer, cfg: cfg, audit: audit, logger: logger}
}

type RegisterInput struct {
	Email             string
	Password          string
	Name              string
	BusinessName      string
	Phone             string
	Timezone          string
	DefaultTaxRateBps int
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, string, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if !utils.ValidateEmail(input.Email) {
		return nil, "", fmt.Errorf("%w: invalid email address", models.ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, "", fmt.Errorf("%w: password must be at least 8 characters", models.ErrValidation)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, "", fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	if strings.TrimSpace(input.BusinessName) == "" {
		return nil, "", fmt.Errorf("%w: business name is required", models.ErrValidation)
	}
	if input.DefaultTaxRateBps < 0 || input.DefaultTaxRateBps > 10000 {
		return nil, "", fmt.Errorf("%w: tax rate must be 0..10000 basis points", models.ErrValidation)
	}

	if _, err := s.store.Users.GetByEmail(ctx, input.Email); err == nil {
		return nil, "", fmt.Errorf("%w: email is already registered", models.ErrConflict)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, "", err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}
	timezone := input.Timezone
	if timezone == "" {
		timezone = "UTC"
	}

	user := &models.User{
		Email:             input.Email,
		Password:          hash,
		Name:              strings.TrimSpace(input.Name),
		BusinessName:      strings.TrimSpace(input.BusinessName),
		Phone:             utils.NormalizePhone(input.Phone),
		Timezone:          timezone,
		DefaultTaxRateBps: input.DefaultTaxRateBps,
		IsActive:          true,
	}
	if err := s.store.Users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	s.audit.Record(ctx, user.ID, "user", user.ID, "registered", nil)
	return user, token, nil
}

// Login checks a password credential. Wrong email and wrong password
// are the same error, so the endpoint cannot be used to test which
// addresses have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, "", fmt.Errorf("%w: invalid credentials", models.ErrValidation)
		}
		return nil, "", err
	}
	if !user.IsActive || user.Password == "" || !utils.CheckPasswordHash(password, user.Password) {
		return nil, "", fmt.Errorf("%w: invalid credentials", models.ErrValidation)
	}

	token, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()
	user.LastLogin = &now
	if err := s.store.Users.Update(ctx, user); err != nil {
		s.logger.Warn("failed to record last login", zap.Error(err))
	}
	return user, token, nil
}

func magicTokenKey(token string) string   { return "magic_link:token:" + token }
func magicRateKey(email string) string    { return "magic_link:rate:" + email }
func magicEnumKey(clientIP string) string { return "magic_link:enum:" + clientIP }

// RequestMagicLink emails a one-time login URL. It answers identically
// whether or not the address has an account; unknown addresses only
// bump the caller's enumeration counter. Over-limit requests fail with
// Conflict.
func (s *AuthService) RequestMagicLink(ctx context.Context, email, clientIP string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !utils.ValidateEmail(email) {
		return fmt.Errorf("%w: invalid email address", models.ErrValidation)
	}

	count, err := s.redis.Incr(ctx, magicRateKey(email)).Result()
	if err != nil {
		return fmt.Errorf("rate limit check: %w", err)
	}
	if count == 1 {
		s.redis.Expire(ctx, magicRateKey(email), s.cfg.RateLimitWindow)
	}
	if count > int64(s.cfg.RateLimitPerWindow) {
		return fmt.Errorf("%w: too many login requests, try again later", models.ErrConflict)
	}

	user, err := s.store.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Same outward response as success. The counter catches
			// anyone walking the address space.
			enum, _ := s.redis.Incr(ctx, magicEnumKey(clientIP)).Result()
			if enum == 1 {
				s.redis.Expire(ctx, magicEnumKey(clientIP), s.cfg.EnumerationCooldown)
			}
			if enum > int64(s.cfg.RateLimitPerWindow) {
				s.logger.Warn("possible account enumeration",
					zap.String("ip", clientIP),
					zap.Int64("misses", enum),
				)
			}
			return nil
		}
		return err
	}
	if !user.IsActive {
		return nil
	}

	token, err := utils.GenerateRandomString(32)
	if err != nil {
		return err
	}
	if err := s.redis.Set(ctx, magicTokenKey(token), user.ID.String(), s.cfg.MagicLinkTTL).Err(); err != nil {
		return fmt.Errorf("store magic link token: %w", err)
	}

	loginURL := fmt.Sprintf("%s/auth/magic-link/verify?token=%s", s.cfg.AppBaseURL, token)
	if s.mailer == nil {
		s.logger.Warn("no mailer configured, magic link not delivered",
			zap.String("email", email),
		)
		return nil
	}
	return s.mailer.SendMagicLink(ctx, email, loginURL)
}

// VerifyMagicLink redeems a token for a session. Tokens are deleted on
// first use; a replay sees NotFound.
func (s *AuthService) VerifyMagicLink(ctx context.Context, token string) (*models.User, string, error) {
	if token == "" {
		return nil, "", fmt.Errorf("%w: token is required", models.ErrValidation)
	}
	value, err := s.redis.GetDel(ctx, magicTokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, "", fmt.Errorf("%w: invalid or expired login link", models.ErrNotFound)
		}
		return nil, "", fmt.Errorf("redeem magic link token: %w", err)
	}
	userID, err := uuid.Parse(value)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid or expired login link", models.ErrNotFound)
	}

	user, err := s.store.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", fmt.Errorf("%w: invalid or expired login link", models.ErrNotFound)
	}

	jwtToken, err := utils.GenerateJWT(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	now := time.Now().UTC()
	user.LastLogin = &now
	if err := s.store.Users.Update(ctx, user); err != nil {
		s.logger.Warn("failed to record last login", zap.Error(err))
	}
	s.audit.Record(ctx, user.ID, "user", user.ID, "magic_link_login", nil)
	return user, jwtToken, nil
}

// Me returns the account behind the context's tenant identity.
func (s *AuthService) Me(ctx context.Context) (*models.User, error) {
	userID, err := utils.UserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.Users.GetByID(ctx, userID)
}

type UpdateProfileInput struct {
	Name              *string
	BusinessName      *string
	Phone             *string
	Timezone          *string
	DefaultTaxRateBps *int
}

func (s *AuthService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*models.User, error) {
	user, err := s.Me(ctx)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, fmt.Errorf("%w: name is required", models.ErrValidation)
		}
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.BusinessName != nil {
		if strings.TrimSpace(*input.BusinessName) == "" {
			return nil, fmt.Errorf("%w: business name is required", models.ErrValidation)
		}
		user.BusinessName = strings.TrimSpace(*input.BusinessName)
	}
	if input.Phone != nil {
		user.Phone = utils.NormalizePhone(*input.Phone)
	}
	if input.Timezone != nil && *input.Timezone != "" {
		if _, err := time.LoadLocation(*input.Timezone); err != nil {
			return nil, fmt.Errorf("%w: unknown timezone %q", models.ErrValidation, *input.Timezone)
		}
		user.Timezone = *input.Timezone
	}
	if input.DefaultTaxRateBps != nil {
		if *input.DefaultTaxRateBps < 0 || *input.DefaultTaxRateBps > 10000 {
			return nil, fmt.Errorf("%w: tax rate must be 0..10000 basis points", models.ErrValidation)
		}
		user.DefaultTaxRateBps = *input.DefaultTaxRateBps
	}

	if err := s.store.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, user.ID, "user", user.ID, "profile_updated", nil)
	return user, nil
}
