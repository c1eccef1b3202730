package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"facebrain/config"
	"facebrain/internal/domain/user"
	"facebrain/internal/repository"
	facebrain_errors "facebrain/pkg/errors"
	"facebrain/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	msgIncorrectForm      = "incorrect form submission"
	msgWrongCredentials   = "wrong credentials"
	msgUnableToGetUser    = "unable to get user"
	msgFieldsRequired     = "All fields are required"
	msgInvalidEmail       = "Invalid email format"
	msgPasswordTooShort   = "Password must be at least 6 characters"
	msgPasswordTooLong    = "Password must be at most 72 bytes"
	msgEmailExists        = "Email already exists"
	msgRegistrationFailed = "Registration failed"
)

type AuthService struct {
	userRepo   repository.UserRepository
	cache      UserCache
	logger     *logger.Logger
	bcryptCost int
	dbTimeout  time.Duration
}

// NewAuthService creates the sign-in and registration service. cache may be nil.
func NewAuthService(userRepo repository.UserRepository, cache UserCache, cfg *config.Config, l *logger.Logger) *AuthService {
	cost := cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		cache:      cache,
		logger:     l,
		bcryptCost: cost,
		dbTimeout:  cfg.DBTimeout,
	}
}

type SignInInput struct {
	Email    string
	Password string
}

type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// SignIn verifies the password and returns the matching user. Unknown email,
// wrong password and store failures all report the same client message.
func (s *AuthService) SignIn(ctx context.Context, in SignInInput) (user.User, error) {
	if in.Email == "" || in.Password == "" {
		s.logger.WithContext(ctx).Info("signin rejected: missing email or password")
		return user.User{}, facebrain_errors.New(facebrain_errors.KindInvalidRequest, msgIncorrectForm)
	}
	email := normalizeEmail(in.Email)
	log := s.logger.WithContext(ctx).With(zap.String("email", email))

	ctx, cancel := withTimeout(ctx, s.dbTimeout)
	defer cancel()

	cred, err := s.userRepo.GetCredentialByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, facebrain_errors.ErrNotFound) {
			log.Info("signin failed: no credentials for email")
			return user.User{}, facebrain_errors.New(facebrain_errors.KindAuthFailed, msgWrongCredentials)
		}
		log.Error("signin failed: credential lookup", zap.Error(err))
		return user.User{}, facebrain_errors.Wrap(facebrain_errors.KindAuthFailed, msgWrongCredentials, err)
	}

	if err := comparePassword(cred.Hash, in.Password); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Info("signin failed: invalid password")
			return user.User{}, facebrain_errors.New(facebrain_errors.KindAuthFailed, msgWrongCredentials)
		}
		log.Error("signin failed: stored hash unusable", zap.Error(err))
		return user.User{}, facebrain_errors.Wrap(facebrain_errors.KindAuthFailed, msgWrongCredentials, err)
	}

	u, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, facebrain_errors.ErrNotFound) {
			log.Error("signin failed: credentials without user row")
			return user.User{}, facebrain_errors.Wrap(facebrain_errors.KindLookupFailed, msgUnableToGetUser, err)
		}
		log.Error("signin failed: user lookup", zap.Error(err))
		return user.User{}, facebrain_errors.Wrap(facebrain_errors.KindAuthFailed, msgWrongCredentials, err)
	}
	return u, nil
}

// Register validates the input, hashes the password and creates the user and
// credential rows atomically.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user.User, error) {
	if err := validateRegister(in); err != nil {
		return user.User{}, err
	}

	hash, err := hashPassword(in.Password, s.bcryptCost)
	if err != nil {
		s.logger.WithContext(ctx).Error("registration failed: hash password", zap.Error(err))
		return user.User{}, facebrain_errors.Wrap(facebrain_errors.KindRegistrationFailed, msgRegistrationFailed, err)
	}

	newUser := &user.User{
		Name:   in.Name,
		Email:  normalizeEmail(in.Email),
		Joined: time.Now().UTC(),
	}
	log := s.logger.WithContext(ctx).With(zap.String("email", newUser.Email))

	dbCtx, cancel := withTimeout(ctx, s.dbTimeout)
	defer cancel()

	if err := s.userRepo.Register(dbCtx, newUser, hash); err != nil {
		if errors.Is(err, facebrain_errors.ErrAlreadyExists) {
			log.Info("registration rejected: email already exists")
			return user.User{}, &facebrain_errors.Error{
				Kind:    facebrain_errors.KindDuplicateEmail,
				Message: msgEmailExists,
				Field:   "email",
				Err:     err,
			}
		}
		log.Error("registration failed", zap.Error(err))
		return user.User{}, facebrain_errors.Wrap(facebrain_errors.KindRegistrationFailed, msgRegistrationFailed, err)
	}

	if s.cache != nil {
		if err := s.cache.FillUser(ctx, *newUser); err != nil {
			log.Warn("profile cache prime failed", zap.Error(err))
		}
	}

	log.Info("user registered", zap.Int64("user_id", newUser.ID))
	return *newUser, nil
}

func validateRegister(in RegisterInput) error {
	missing := map[string]bool{
		"email":    in.Email == "",
		"name":     in.Name == "",
		"password": in.Password == "",
	}
	if missing["email"] || missing["name"] || missing["password"] {
		return &facebrain_errors.Error{
			Kind:    facebrain_errors.KindInvalidRequest,
			Message: msgFieldsRequired,
			Fields:  missing,
		}
	}
	if !emailPattern.MatchString(in.Email) {
		return facebrain_errors.New(facebrain_errors.KindInvalidFormat, msgInvalidEmail)
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return facebrain_errors.New(facebrain_errors.KindWeakPassword, msgPasswordTooShort)
	}
	if len(in.Password) > maxPasswordBytes {
		return facebrain_errors.New(facebrain_errors.KindWeakPassword, msgPasswordTooLong)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
