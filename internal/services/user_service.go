package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"facebrain/config"
	"facebrain/internal/domain/user"
	"facebrain/internal/repository"
	facebrain_errors "facebrain/pkg/errors"
	"facebrain/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type UserService struct {
	userRepo  repository.UserRepository
	cache     UserCache
	logger    *logger.Logger
	dbTimeout time.Duration
	sf        singleflight.Group
}

// NewUserService creates the profile service. cache may be nil.
func NewUserService(userRepo repository.UserRepository, cache UserCache, cfg *config.Config, l *logger.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		cache:     cache,
		logger:    l,
		dbTimeout: cfg.DBTimeout,
	}
}

// Profile returns the user with the given id.
func (s *UserService) Profile(ctx context.Context, id int64) (user.User, error) {
	log := s.logger.WithContext(ctx).With(zap.Int64("user_id", id))

	if s.cache != nil {
		cached, err := s.cache.GetUser(ctx, id)
		if err != nil {
			log.Warn("profile cache read failed", zap.Error(err))
		} else if cached != nil {
			return *cached, nil
		}
	}

	// Concurrent misses for the same id share one store read.
	v, err, _ := s.sf.Do(strconv.FormatInt(id, 10), func() (any, error) {
		dbCtx, cancel := withTimeout(context.WithoutCancel(ctx), s.dbTimeout)
		defer cancel()
		return s.userRepo.GetUserByID(dbCtx, id)
	})
	if err != nil {
		if errors.Is(err, facebrain_errors.ErrNotFound) {
			return user.User{}, facebrain_errors.New(facebrain_errors.KindNotFound, "Not found")
		}
		log.Error("profile lookup failed", zap.Error(err))
		return user.User{}, facebrain_errors.Wrap(facebrain_errors.KindLookupFailed, "Error getting users", err)
	}
	u := v.(user.User)

	if s.cache != nil {
		if err := s.cache.FillUser(ctx, u); err != nil {
			log.Warn("profile cache write failed", zap.Error(err))
		}
	}
	return u, nil
}
