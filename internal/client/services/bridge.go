package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/skincare/internal/client/client"
	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/common"
	"github.com/dmitrijs2005/skincare/internal/logging"
	"github.com/dmitrijs2005/skincare/internal/validate"
)

// ProfileView is what the shell shows about the signed-in user.
type ProfileView struct {
	UID       string
	Name      string
	NeedsName bool
}

type updateNameInput struct {
	UID  string `json:"uid" validate:"required"`
	Name string `json:"name" validate:"notblank,max=100" msg:"Name cannot be empty."`
}

// Bridge keeps the displayed name of the current user in step with the
// backend profile.
type Bridge struct {
	client   client.Client
	validate *validate.Validator
	log      logging.Logger

	mu          sync.Mutex
	displayName string
}

func NewBridge(c client.Client, v *validate.Validator, log logging.Logger) *Bridge {
	if log == nil {
		log = logging.Discard()
	}
	return &Bridge{client: c, validate: v, log: log}
}

// ExchangeCredential asks the backend to recognise a provider token and
// returns the canonical user id. Every failure is an *common.AuthExchangeError.
func (b *Bridge) ExchangeCredential(ctx context.Context, providerToken string) (string, error) {
	uid, err := b.client.VerifyToken(ctx, providerToken)
	if err != nil {
		return "", &common.AuthExchangeError{Reason: exchangeReason(err), Err: err}
	}
	return uid, nil
}

func exchangeReason(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		return "token rejected by backend"
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, client.ErrUnavailable):
		return "backend unavailable"
	default:
		return err.Error()
	}
}

// Seed sets the initial display name from a freshly resolved identity.
func (b *Bridge) Seed(id *models.Identity) {
	if id == nil {
		return
	}
	b.mu.Lock()
	b.displayName = id.DisplayName
	b.mu.Unlock()
}

// DisplayName is the name currently shown for the user.
func (b *Bridge) DisplayName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.displayName
}

// FetchProfile loads the backend profile. Failures are logged and leave the
// displayed name alone; they are never returned.
func (b *Bridge) FetchProfile(ctx context.Context, uid string) ProfileView {
	p, err := b.client.CheckUserInfo(ctx, uid)
	if err != nil {
		b.log.Warn(ctx, "error fetching user data", "uid", uid, "err", err)
		return ProfileView{UID: uid, Name: b.DisplayName()}
	}

	b.mu.Lock()
	if p.Name != "" {
		b.displayName = p.Name
	}
	name := b.displayName
	b.mu.Unlock()

	return ProfileView{UID: uid, Name: name, NeedsName: p.NeedsName()}
}

// UpdateProfileName stores a new name for uid. The display name changes
// before the backend confirms and is not rolled back on failure.
func (b *Bridge) UpdateProfileName(ctx context.Context, uid, name string) error {
	in := updateNameInput{UID: uid, Name: strings.TrimSpace(name)}
	if err := b.validate.Struct(in); err != nil {
		return err
	}

	b.mu.Lock()
	b.displayName = in.Name
	b.mu.Unlock()

	if err := b.client.UpdateName(ctx, in.UID, in.Name); err != nil {
		b.log.Warn(ctx, "error updating name", "uid", uid, "err", err)
		return fmt.Errorf("update name: %w", err)
	}

	p, err := b.client.CheckUserInfo(ctx, in.UID)
	if err != nil {
		return fmt.Errorf("confirm name: %w", err)
	}
	if p.Name != "" {
		b.mu.Lock()
		b.displayName = p.Name
		b.mu.Unlock()
	}
	return nil
}
