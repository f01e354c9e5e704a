package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/HummaSaeed/TimeTableManager/internal/dto"
	"github.com/HummaSaeed/TimeTableManager/internal/models"
	"github.com/HummaSaeed/TimeTableManager/pkg/config"
	apperrors "github.com/HummaSaeed/TimeTableManager/pkg/errors"
)

type accountReader interface {
	FindByEmail(ctx context.Context, email string) (*models.SchoolAccount, error)
}

// AuthService authenticates school administrator accounts and issues JWTs
// scoped to their school.
type AuthService struct {
	accounts accountReader
	cfg      config.JWTConfig
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAuthService(accounts accountReader, cfg config.JWTConfig, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{accounts: accounts, cfg: cfg, validate: validator.New(), logger: logger}
}

func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid login request")
	}

	account, err := s.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}
	if !account.Active {
		return nil, apperrors.ErrInactiveAccount
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.cfg.Expiration)
	claims := models.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SchoolID: account.SchoolID,
		Email:    account.Email,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "sign token")
	}

	s.logger.Info("account logged in", zap.String("account_id", account.ID), zap.String("school_id", account.SchoolID))

	return &dto.LoginResponse{Token: token, ExpiresAt: expiresAt, SchoolID: account.SchoolID}, nil
}
