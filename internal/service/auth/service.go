package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-ledger/internal/domain/auth"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/employee"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/identity"
	"github.com/cmlabs-hris/hris-ledger/internal/domain/user"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/database"
	"github.com/cmlabs-hris/hris-ledger/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	user.UserRepository
	jwt.Service
	auth.RefreshTokenRepository
	employee.EmployeeRepository
	txManager      database.TxManager
	superuserEmail string
}

func NewAuthService(userRepository user.UserRepository, jwtService jwt.Service, refreshTokens auth.RefreshTokenRepository, employeeRepository employee.EmployeeRepository, txManager database.TxManager, superuserEmail string) auth.AuthService {
	return &AuthServiceImpl{
		UserRepository:         userRepository,
		Service:                jwtService,
		RefreshTokenRepository: refreshTokens,
		EmployeeRepository:     employeeRepository,
		txManager:              txManager,
		superuserEmail:         strings.ToLower(strings.TrimSpace(superuserEmail)),
	}
}

func (a *AuthServiceImpl) isSuperuser(email string) bool {
	return a.superuserEmail != "" && strings.EqualFold(email, a.superuserEmail)
}

// principal builds the token subject for u. Logins linked to an inactive
// employee are refused.
func (a *AuthServiceImpl) principal(ctx context.Context, u user.User) (jwt.Principal, error) {
	p := jwt.Principal{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
	}
	if a.isSuperuser(u.Email) {
		p.Role = user.RoleAdmin
		return p, nil
	}
	if u.EmployeeID == nil {
		return p, nil
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, *u.EmployeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return jwt.Principal{}, auth.ErrInvalidCredentials
		}
		return jwt.Principal{}, fmt.Errorf("failed to get employee for user: %w", err)
	}
	if !emp.IsActive() {
		return jwt.Principal{}, auth.ErrAccountInactive
	}
	p.EmployeeID = &emp.ID
	p.BadgeID = &emp.BadgeID
	return p, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	p, err := a.principal(ctx, userData)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	var tokenResponse auth.TokenResponse
	err = a.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		var err error
		tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(p)
		if err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}
		tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(userData.ID)
		if err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}

		if err := a.RefreshTokenRepository.CreateRefreshToken(txCtx, userData.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, sessionTrackReq); err != nil {
			return fmt.Errorf("failed to save refresh token to database: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("user logged in", "user_id", userData.ID, "role", p.Role)
	return tokenResponse, nil
}

// Logout implements auth.AuthService. Unknown or already revoked tokens are
// accepted silently.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	return a.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		isRevoked, err := a.RefreshTokenRepository.IsRefreshTokenRevoked(txCtx, token)
		if err != nil {
			return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
		}
		if isRevoked {
			return nil
		}
		if err := a.RefreshTokenRepository.RevokeRefreshToken(txCtx, token); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		return nil
	})
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	userID, err := a.Service.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	isRevoked, err := a.RefreshTokenRepository.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if isRevoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrUserNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	// Role, badge and status may have changed since login.
	p, err := a.principal(ctx, userData)
	if err != nil {
		return auth.AccessTokenResponse{}, err
	}

	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(p)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}
	return resp, nil
}

// ChangePassword implements auth.AuthService. Every refresh token of the
// user is revoked so other sessions have to log in again.
func (a *AuthServiceImpl) ChangePassword(ctx context.Context, req auth.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	id, err := identity.FromContext(ctx)
	if err != nil {
		return err
	}

	userData, err := a.UserRepository.GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if userData.PasswordHash == nil {
		return auth.ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return auth.ErrWrongPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return a.txManager.WithinTx(ctx, func(txCtx context.Context) error {
		if err := a.UserRepository.UpdatePassword(txCtx, userData.ID, string(hash)); err != nil {
			return fmt.Errorf("failed to update password: %w", err)
		}
		if err := a.RefreshTokenRepository.RevokeAllForUser(txCtx, userData.ID); err != nil {
			return fmt.Errorf("failed to revoke sessions: %w", err)
		}
		return nil
	})
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.MeResponse, error) {
	id, err := identity.FromContext(ctx)
	if err != nil {
		return auth.MeResponse{}, err
	}

	resp := auth.MeResponse{
		UserID:      id.UserID,
		Email:       id.Email,
		Role:        string(id.Role),
		IsSuperuser: id.IsSuperuser,
	}
	if emp := id.Employee; emp != nil {
		name := emp.FullName()
		resp.EmployeeID = &emp.ID
		resp.BadgeID = &emp.BadgeID
		resp.Name = &name
		resp.Department = &emp.Department
		resp.JobRole = &emp.JobRole
		resp.Manager = emp.ManagerLabel()
	}
	return resp, nil
}
