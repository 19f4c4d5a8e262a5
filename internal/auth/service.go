package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/internal/accounts"
	pkgAuth "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth/session"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/config"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/db"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/security"
)

const (
	userNotFoundMessage    = "User not found"
	invalidPasswordMessage = "Invalid password"
)

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, claims *pkgAuth.AccessTokenClaims) error
	Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error)
}

type sessionManager interface {
	Open(ctx context.Context, accessID string, userID int64) error
	Revoke(ctx context.Context, accessID string) error
}

type service struct {
	db          *db.Client
	accounts    accounts.Repository
	session     sessionManager
	jwtCfg      config.JWTConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
	now         func() time.Time
}

// ServiceParams bundles the dependencies required to build an auth service.
// SessionManager is optional; without it tokens are stateless.
type ServiceParams struct {
	DB             *db.Client
	Accounts       accounts.Repository
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

// NewService constructs the login/registration service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository is required")
	}
	return &service{
		db:          params.DB,
		accounts:    params.Accounts,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email and password are required")
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, accounts.ErrNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, userNotFoundMessage)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup account")
	}

	ok, err := security.VerifyPassword(req.Password, account.PasswordHash())
	if err != nil && !errors.Is(err, security.ErrInvalidHash) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, invalidPasswordMessage)
	}
	s.upgradeHash(ctx, account, req.Password)

	payload := pkgAuth.AccessTokenPayload{
		UserID:       account.AccountID(),
		Role:         account.Role(),
		Country:      account.Country(),
		CurrencyCode: account.CurrencyCode(),
		Email:        account.EmailAddress(),
		Name:         account.DisplayName(),
		JTI:          session.NewAccessID(),
	}
	resp := &LoginResponse{
		Role:         account.Role(),
		UserID:       account.AccountID(),
		Name:         account.DisplayName(),
		Email:        account.EmailAddress(),
		Country:      account.Country(),
		CurrencyCode: account.CurrencyCode(),
	}
	if owner, ok := account.(*accounts.Owner); ok {
		locationID := owner.LocationID
		locationName := owner.LocationName
		payload.LocationID = &locationID
		payload.SupermarketLocation = locationName
		resp.LocationID = &locationID
		resp.LocationName = &locationName
	}

	token, err := pkgAuth.MintAccessToken(s.jwtCfg, s.now(), payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	if s.session != nil {
		if err := s.session.Open(ctx, payload.JTI, payload.UserID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "open session")
		}
	}
	resp.Token = token
	return resp, nil
}

// upgradeHash rewrites bcrypt or under-parameterized hashes after a
// successful login. Failures are logged and never block the login.
func (s *service) upgradeHash(ctx context.Context, account accounts.Account, password string) {
	if !security.NeedsRehash(account.PasswordHash(), s.passwordCfg) {
		return
	}
	hash, err := security.HashPassword(password, s.passwordCfg)
	if err == nil {
		err = s.accounts.UpdatePasswordHash(ctx, account.Role(), account.AccountID(), hash)
	}
	if err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(s.logg.WithUserID(ctx, account.AccountID()), "error", err.Error()), "password hash upgrade failed")
	}
}

func (s *service) Logout(ctx context.Context, claims *pkgAuth.AccessTokenClaims) error {
	if claims == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}
	if s.session == nil || claims.ID == "" {
		return nil
	}
	if err := s.session.Revoke(ctx, claims.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke session")
	}
	return nil
}
