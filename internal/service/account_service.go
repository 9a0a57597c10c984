package service

import (
	"context"
	"errors"

	"github.com/AlShabiliBadia/Shorter-links/internal/apperrors"
	"github.com/AlShabiliBadia/Shorter-links/internal/auth"
	"github.com/AlShabiliBadia/Shorter-links/internal/dto"
	"github.com/AlShabiliBadia/Shorter-links/internal/model"
	"github.com/AlShabiliBadia/Shorter-links/internal/repository"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// TokenTypeBearer is the token_type of every issued token.
const TokenTypeBearer = "bearer"

type AccountService struct {
	store    repository.Store
	hasher   *auth.Hasher
	tokens   *auth.TokenService
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAccountService(store repository.Store, hasher *auth.Hasher, tokens *auth.TokenService, logger *zap.Logger) *AccountService {
	return &AccountService{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		validate: validator.New(),
		logger:   logger,
	}
}

func emailTaken() *apperrors.AppError {
	return apperrors.ConflictError("error.email_taken", "An account with this email already exists.")
}

func passwordLengthError() *apperrors.AppError {
	return apperrors.ValidationError("error.password_length", "Password must be between 8 and 72 characters")
}

// fieldErrors maps a struct field to the error reported when any of its rules fails.
var fieldErrors = map[string]func() *apperrors.AppError{
	"Username": func() *apperrors.AppError {
		return apperrors.ValidationError("error.username_invalid", "Username is required and must be at most 80 characters")
	},
	"Email": func() *apperrors.AppError {
		return apperrors.ValidationError("error.email_invalid", "A valid email address is required")
	},
	"Password": passwordLengthError,
}

func validationError(err error) *apperrors.AppError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		if build, ok := fieldErrors[fieldErrs[0].StructField()]; ok {
			return build().Wrap(err)
		}
	}
	return apperrors.ValidationError("error.validation", "Parameter verification failed").Wrap(err)
}

// Signup creates an account. Nothing is stored unless every check passes.
func (s *AccountService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.UserDisplay, error) {
	if req.Password != req.PasswordConfirmation {
		return nil, apperrors.ValidationError("error.password_mismatch",
			"Password and Password confirmation are not matching.")
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	_, err := s.store.Users().FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, emailTaken()
	case !errors.Is(err, repository.ErrNotFound):
		s.logger.Error("Failed to look up email", zap.Error(err))
		return nil, apperrors.SystemErrorDefault().Wrap(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, passwordLengthError()
		}
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, apperrors.SystemErrorDefault().Wrap(err)
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		// lost a race with another signup for the same email
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, emailTaken()
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, apperrors.SystemErrorDefault().Wrap(err)
	}

	s.logger.Info("Account created", zap.Uint("user_id", user.ID))
	display := dto.NewUserDisplay(user)
	return &display, nil
}

// Login exchanges credentials for a bearer token. Unknown email and wrong password fail with
// the same error after the same amount of hashing work.
func (s *AccountService) Login(ctx context.Context, req dto.LoginRequest) (*dto.Token, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	user, err := s.store.Users().FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to look up email", zap.Error(err))
			return nil, apperrors.SystemErrorDefault().Wrap(err)
		}
		s.hasher.VerifyNothing(req.Password)
		return nil, apperrors.InvalidCredentialsError()
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		return nil, apperrors.InvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, apperrors.SystemErrorDefault().Wrap(err)
	}
	return &dto.Token{AccessToken: token, TokenType: TokenTypeBearer}, nil
}

// DeleteAccount removes user. Their links stay and become anonymous links.
func (s *AccountService) DeleteAccount(ctx context.Context, user *model.User) error {
	if user == nil {
		return apperrors.UnauthenticatedError()
	}

	var orphaned int64
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		n, err := tx.Links().ClearOwner(ctx, user.ID)
		if err != nil {
			return err
		}
		orphaned = n
		return tx.Users().Delete(ctx, user.ID)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.UnauthenticatedError()
		}
		s.logger.Error("Failed to delete account", zap.Uint("user_id", user.ID), zap.Error(err))
		return apperrors.SystemErrorDefault().Wrap(err)
	}

	s.logger.Info("Account deleted",
		zap.Uint("user_id", user.ID),
		zap.Int64("orphaned_links", orphaned))
	return nil
}

// Authenticate resolves a bearer token to its user. Every failure reports false.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*model.User, bool) {
	id, ok := s.tokens.Subject(token)
	if !ok {
		return nil, false
	}

	user, err := s.store.Users().FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("Failed to load token subject", zap.Uint("user_id", id), zap.Error(err))
		}
		return nil, false
	}
	return user, true
}
