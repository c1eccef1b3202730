package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"facebrain/config"
	"facebrain/internal/clarifai"
	"facebrain/internal/repository"
	facebrain_errors "facebrain/pkg/errors"
	"facebrain/pkg/logger"

	"go.uber.org/zap"
)

type ImageService struct {
	userRepo        repository.UserRepository
	detector        FaceDetector
	cache           UserCache
	logger          *logger.Logger
	dbTimeout       time.Duration
	providerTimeout time.Duration
}

// NewImageService creates the image submission service. cache may be nil.
func NewImageService(userRepo repository.UserRepository, detector FaceDetector, cache UserCache, cfg *config.Config, l *logger.Logger) *ImageService {
	return &ImageService{
		userRepo:        userRepo,
		detector:        detector,
		cache:           cache,
		logger:          l,
		dbTimeout:       cfg.DBTimeout,
		providerTimeout: cfg.ClarifaiTimeout,
	}
}

type SubmitImageInput struct {
	UserID   int64
	ImageURL string
}

type SubmitImageResult struct {
	Entries  int64
	Response json.RawMessage
}

// Submit checks the user exists, runs face detection on the image and, when at
// least one face region comes back, adds exactly one to the user's entries.
func (s *ImageService) Submit(ctx context.Context, in SubmitImageInput) (SubmitImageResult, error) {
	if in.UserID <= 0 || strings.TrimSpace(in.ImageURL) == "" {
		return SubmitImageResult{}, facebrain_errors.New(facebrain_errors.KindInvalidRequest, msgIncorrectForm)
	}
	log := s.logger.WithContext(ctx).With(zap.Int64("user_id", in.UserID))

	lookupCtx, cancel := withTimeout(ctx, s.dbTimeout)
	u, err := s.userRepo.GetUserByID(lookupCtx, in.UserID)
	cancel()
	if err != nil {
		if errors.Is(err, facebrain_errors.ErrNotFound) {
			return SubmitImageResult{}, facebrain_errors.New(facebrain_errors.KindNotFound, "User not found")
		}
		log.Error("image submission: user lookup failed", zap.Error(err))
		return SubmitImageResult{}, facebrain_errors.Wrap(facebrain_errors.KindLookupFailed, "Database error", err)
	}

	detectCtx, cancel := withTimeout(ctx, s.providerTimeout)
	result, err := s.detector.DetectFaces(detectCtx, strings.TrimSpace(in.ImageURL))
	cancel()
	if err != nil {
		cause := fmt.Errorf("%w: %w", facebrain_errors.ErrProvider, err)
		var statusErr *clarifai.StatusError
		if errors.As(err, &statusErr) {
			log.Error("image submission: detection returned error status",
				zap.Int("status_code", statusErr.Status.Code),
				zap.String("status_description", statusErr.Status.Description),
				zap.String("status_details", statusErr.Status.Details),
			)
			return SubmitImageResult{}, facebrain_errors.Wrap(facebrain_errors.KindProviderError, "Error in face detection", cause)
		}
		log.Error("image submission: detection call failed", zap.Error(err))
		return SubmitImageResult{}, facebrain_errors.Wrap(facebrain_errors.KindProviderUnavailable, "Error processing image", cause)
	}

	if result.Regions == 0 {
		log.Info("image submission: no faces detected")
		return SubmitImageResult{Entries: u.Entries, Response: result.Raw}, nil
	}

	updateCtx, cancel := withTimeout(ctx, s.dbTimeout)
	updated, err := s.userRepo.IncrementEntries(updateCtx, in.UserID)
	cancel()
	if err != nil {
		log.Error("image submission: entries increment failed", zap.Int("regions", result.Regions), zap.Error(err))
		return SubmitImageResult{}, facebrain_errors.Wrap(facebrain_errors.KindUpdateFailed, "Unable to update entries", err)
	}

	if s.cache != nil {
		if err := s.cache.UpdateUser(ctx, updated); err != nil {
			log.Warn("profile cache update failed", zap.Error(err))
		}
	}

	log.Info("image submission: entry recorded", zap.Int("regions", result.Regions), zap.Int64("entries", updated.Entries))
	return SubmitImageResult{Entries: updated.Entries, Response: result.Raw}, nil
}
