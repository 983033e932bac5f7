package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/personnel"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/grading"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/appraisal-backend-go/internal/pkg/validator"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx            database.TxManager
	users         user.UserRepository
	personnel     personnel.PersonnelRepository
	refreshTokens auth.RefreshTokenRepository
	jwtService    jwt.Service
}

func NewAuthService(tx database.TxManager, userRepository user.UserRepository, personnelRepository personnel.PersonnelRepository, refreshTokenRepository auth.RefreshTokenRepository, jwtService jwt.Service) auth.AuthService {
	return &AuthServiceImpl{
		tx:            tx,
		users:         userRepository,
		personnel:     personnelRepository,
		refreshTokens: refreshTokenRepository,
		jwtService:    jwtService,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// issueTokens creates an access/refresh pair and stores the refresh token.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse
	var err error

	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.jwtService.GenerateAccessToken(u.ID, u.Role, u.Department)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	err = a.refreshTokens.CreateRefreshToken(ctx, u.ID, tokenResponse.RefreshToken, time.Unix(tokenResponse.RefreshTokenExpiresIn, 0), session)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}
	return tokenResponse, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.users.GetByUsername(ctx, strings.TrimSpace(loginReq.Username))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	// OAuth-only accounts have no password
	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		tokenResponse, err = a.issueTokens(ctx, userData, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("user logged in", "user_id", userData.ID, "role", userData.Role)
	return tokenResponse, nil
}

// LoginWithGoogle implements auth.AuthService. Only pre-provisioned accounts whose
// username is the Google email can sign in.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, googleEmail string, googleID string, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userData, err := a.users.GetByUsername(ctx, googleEmail)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrGoogleAccountNotLinked
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user data by username: %w", err)
	}

	// A different Google account already claimed this user
	if userData.OAuthProviderID != nil && *userData.OAuthProviderID != googleID {
		return auth.TokenResponse{}, auth.ErrGoogleAccountNotLinked
	}

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		if userData.OAuthProviderID == nil {
			linked, err := a.users.LinkGoogleAccount(ctx, userData.ID, googleID)
			if err != nil {
				return err
			}
			userData = linked
		}
		tokenResponse, err = a.issueTokens(ctx, userData, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("user logged in with google", "user_id", userData.ID)
	return tokenResponse, nil
}

// RefreshToken implements auth.AuthService. The presented refresh token is revoked and
// replaced by a new pair.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	// 1. Verify JWT signature, expiry and type
	userID, err := a.jwtService.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		// 2. Check DB for revocation/expiry
		revoked, err := a.refreshTokens.IsRefreshTokenRevoked(ctx, req.RefreshToken)
		if err != nil {
			return fmt.Errorf("failed to check refresh token: %w", err)
		}
		if revoked {
			return auth.ErrRefreshTokenRevoked
		}

		// 3. Get user
		userData, err := a.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return auth.ErrInvalidToken
			}
			return err
		}

		// 4. Rotate
		if err := a.refreshTokens.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", err)
		}
		tokenResponse, err = a.issueTokens(ctx, userData, session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return tokenResponse, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return auth.ErrRefreshTokenCookieNotFound
	}
	if err := a.refreshTokens.RevokeRefreshToken(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (user.UserResponse, error) {
	principal, err := user.PrincipalFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	u, err := a.users.GetByID(ctx, principal.UserID)
	if err != nil {
		return user.UserResponse{}, err
	}
	return u.ToResponse(), nil
}

// CreateUser implements auth.AuthService.
func (a *AuthServiceImpl) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	principal, err := user.PrincipalFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	if !principal.IsAdmin() {
		return user.UserResponse{}, user.ErrAdminPrivilegeRequired
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	// A linked personnel record must belong to the same department
	if req.PersonnelID != nil {
		p, err := a.personnel.GetByID(ctx, *req.PersonnelID)
		if err != nil {
			if errors.Is(err, personnel.ErrPersonnelNotFound) {
				return user.UserResponse{}, validator.ValidationErrors{{Field: "personnel_id", Message: "personnel not found"}}
			}
			return user.UserResponse{}, err
		}
		if p.Department != req.Department {
			return user.UserResponse{}, validator.ValidationErrors{{Field: "personnel_id", Message: "personnel belongs to another department"}}
		}
	}

	created, err := a.createUser(ctx, req)
	if err != nil {
		return user.UserResponse{}, err
	}

	slog.Info("user created", "user_id", created.ID, "role", created.Role, "department", created.Department, "created_by", principal.UserID)
	return created.ToResponse(), nil
}

func (a *AuthServiceImpl) createUser(ctx context.Context, req user.CreateUserRequest) (user.User, error) {
	hashedPassword, err := a.hashPassword(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("failed to hash password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return user.User{}, fmt.Errorf("failed to generate user id: %w", err)
	}

	return a.users.Create(ctx, user.User{
		ID:           id.String(),
		Username:     req.Username,
		Name:         req.Name,
		PasswordHash: &hashedPassword,
		Role:         req.Role,
		Department:   req.Department,
		PersonnelID:  req.PersonnelID,
	})
}

// EnsureAdmin implements auth.AuthService.
func (a *AuthServiceImpl) EnsureAdmin(ctx context.Context, username, name, password string) error {
	_, err := a.users.GetByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return fmt.Errorf("failed to look up admin account: %w", err)
	}
	if password == "" {
		slog.Warn("no admin account exists and ADMIN_PASSWORD is empty, skipping bootstrap", "username", username)
		return nil
	}

	req := user.CreateUserRequest{
		Username:   username,
		Name:       name,
		Password:   password,
		Role:       user.RoleAdmin,
		Department: string(grading.DepartmentGeneral),
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid admin account settings: %w", err)
	}

	created, err := a.createUser(ctx, req)
	if err != nil {
		if errors.Is(err, user.ErrUsernameExists) {
			return nil
		}
		return err
	}
	slog.Info("admin account created", "user_id", created.ID, "username", created.Username)
	return nil
}
