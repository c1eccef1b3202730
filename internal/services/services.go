package services

import (
	"context"
	"time"

	"facebrain/internal/clarifai"
	"facebrain/internal/domain/user"
)

// UserCache is the optional profile cache. Failures are logged and ignored.
type UserCache interface {
	GetUser(ctx context.Context, userID int64) (*user.User, error)
	// FillUser stores a copy read from the store only if none is cached yet.
	FillUser(ctx context.Context, u user.User) error
	// UpdateUser stores a freshly written copy unless the cached one has at
	// least as many entries.
	UpdateUser(ctx context.Context, u user.User) error
}

// FaceDetector runs face detection on an image URL.
type FaceDetector interface {
	DetectFaces(ctx context.Context, imageURL string) (*clarifai.Result, error)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
