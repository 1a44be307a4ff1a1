package client

import (
	"context"

	"github.com/dmitrijs2005/skincare/internal/client/models"
)

// Client is the classification backend as seen by the client services.
type Client interface {
	VerifyToken(ctx context.Context, idToken string) (string, error)
	CheckUserInfo(ctx context.Context, uid string) (models.Profile, error)
	UpdateName(ctx context.Context, uid, name string) error

	GetSessions(ctx context.Context, uid string) ([]models.Session, error)
	StartSession(ctx context.Context, uid, name string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context, sessionID string) (*models.SessionDetail, error)
	UploadImage(ctx context.Context, sessionID, uid string, ref models.ImageRef) error
}

// TokenSource supplies the bearer credential for backend calls. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }
