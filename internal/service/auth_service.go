package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nascimento1980/SmartCHAPP-sub000/internal/dto"
	"github.com/nascimento1980/SmartCHAPP-sub000/internal/repository"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/jwt"
	"github.com/nascimento1980/SmartCHAPP-sub000/pkg/redis"
)

// ── auth module errors ──

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrInvalidRefresh     = errors.New("invalid refresh token")
)

// AuthService login, logout and token refresh.
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error)
	// Logout blacklists the refresh token's JWT ID for its remaining life.
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	cache  *redis.Client
	logger *zap.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(repo *repository.Repository, jwtMgr *jwt.Manager, cache *redis.Client, logger *zap.Logger) AuthService {
	return &authService{repo: repo, jwtMgr: jwtMgr, cache: cache, logger: logger}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	access, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, req.RememberMe)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in", zap.String("user_id", user.UserID))

	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User: dto.UserResponse{
			ID:       user.UserID,
			Name:     user.Name,
			Email:    user.Email,
			Role:     user.Role,
			IsActive: user.IsActive,
		},
	}, nil
}

func (s *authService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.RefreshTokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != "refresh" {
		return nil, ErrInvalidRefresh
	}

	if s.cache != nil {
		blacklisted, err := s.cache.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Warn("blacklist check failed", zap.Error(err))
		} else if blacklisted {
			return nil, ErrInvalidRefresh
		}
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefresh
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	// Rotation: the old refresh token is retired with the new pair.
	if s.cache != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.cache.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			s.logger.Warn("refresh token blacklist failed", zap.Error(err))
		}
	}

	access, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, claims.RememberMe)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshTokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtMgr.ParseToken(refreshToken)
	if err != nil {
		return nil // already unusable
	}

	if s.cache != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := s.cache.BlacklistToken(ctx, claims.ID, ttl); err != nil {
			s.logger.Warn("logout blacklist failed", zap.Error(err))
			return err
		}
	}

	return nil
}
