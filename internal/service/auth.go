package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bytebazaar/internal/core/auth"
	"bytebazaar/internal/domain"
	"bytebazaar/pkg/utils"
)

type AuthService struct {
	users  domain.UserRepository
	tokens *auth.TokenService
	deny   auth.Denylist
	log    *zap.Logger
}

func NewAuthService(users domain.UserRepository, tokens *auth.TokenService, deny auth.Denylist, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	if deny == nil {
		deny = auth.NewMemoryDenylist()
	}
	return &AuthService{users: users, tokens: tokens, deny: deny, log: log}
}

type RegisterInput struct {
	Name            string `json:"name" binding:"required,notblank,max=64" msg:"All fields are required" msg_max:"Name must be at most 64 characters"`
	Email           string `json:"email" binding:"required,email,max=191" msg:"All fields are required" msg_email:"Invalid email address" msg_max:"Email is too long"`
	Password        string `json:"password" binding:"required,max=72" msg:"All fields are required" msg_max:"Password must be at most 72 characters"`
	ConfirmPassword string `json:"confirmPassword" binding:"required" msg:"All fields are required"`
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *domain.User
}

// Register 不自动登录
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Password != in.ConfirmPassword {
		return nil, domain.Validation("Passwords do not match")
	}
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Conflict("Email already exists")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{ID: utils.NewID(), Name: in.Name, Email: in.Email, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		// 并发注册同一邮箱，唯一索引兜底
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("Email already exists")
		}
		return nil, err
	}
	usersRegistered.Inc()
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.Unauthorized("Invalid credentials")
	}
	access, err := s.tokens.IssueAccessToken(u.ID, u.Name)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefreshToken(u.ID, u.Name)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: access, RefreshToken: refresh, User: u}, nil
}

// Refresh 只签发新的 access token，refresh token 不轮换
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", domain.Unauthorized("Unauthorized")
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", &domain.Error{Kind: domain.ErrForbidden, Msg: "Invalid refresh token", Err: err}
	}
	revoked, err := s.deny.IsRevoked(ctx, claims.ID)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", domain.Forbidden("Token revoked")
	}
	return s.tokens.IssueAccessToken(claims.UserID, claims.Name)
}

// Logout 吊销传入的 refresh / access token；解析失败的直接忽略
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) error {
	var errs []error
	if refreshToken != "" {
		if c, err := s.tokens.VerifyRefresh(refreshToken); err == nil {
			errs = append(errs, s.deny.Revoke(ctx, c.ID, c.ExpiresAt.Time))
		}
	}
	if accessToken != "" {
		if c, err := s.tokens.VerifyAccess(accessToken); err == nil {
			errs = append(errs, s.deny.Revoke(ctx, c.ID, c.ExpiresAt.Time))
		}
	}
	return errors.Join(errs...)
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, domain.Unauthorized("Unauthorized")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User not found")
	}
	return u, nil
}

// hashPassword 超长密码是输入问题，按 400 返回
func hashPassword(pw string) (string, error) {
	hash, err := utils.HashPassword(pw)
	if errors.Is(err, utils.ErrPasswordTooLong) {
		return "", domain.Validation(fmt.Sprintf("Password must be at most %d bytes", utils.MaxPasswordBytes))
	}
	return hash, err
}
