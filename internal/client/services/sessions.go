package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/skincare/internal/client/client"
	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/logging"
	"github.com/dmitrijs2005/skincare/internal/validate"
)

// NoticeListFailed is shown when the session list cannot be loaded.
const NoticeListFailed = "Failed to load your sessions. Please refresh the page."

// NoticeError carries a message meant for the user next to the cause.
type NoticeError struct {
	Notice string
	Err    error
}

func (e *NoticeError) Error() string { return fmt.Sprintf("%s: %v", e.Notice, e.Err) }
func (e *NoticeError) Unwrap() error { return e.Err }

type startSessionInput struct {
	UID  string `json:"uid" validate:"required"`
	Name string `json:"session_name" validate:"notblank,max=200" msg:"Session name cannot be empty."`
}

// Registry holds the visible session list of one user.
type Registry struct {
	client   client.Client
	validate *validate.Validator
	log      logging.Logger

	mu       sync.Mutex
	sessions []models.Session
	active   string
	// gen identifies the latest List call; older calls do not publish.
	gen uint64
}

func NewRegistry(c client.Client, v *validate.Validator, log logging.Logger) *Registry {
	if log == nil {
		log = logging.Discard()
	}
	return &Registry{client: c, validate: v, log: log}
}

// List reloads the sessions of uid. The visible list is emptied first and
// stays empty if the load fails.
func (r *Registry) List(ctx context.Context, uid string) ([]models.Session, error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.sessions = nil
	r.mu.Unlock()

	got, err := r.client.GetSessions(ctx, uid)
	if err != nil {
		r.log.Error(ctx, "error fetching sessions", "uid", uid, "err", err)
		return nil, &NoticeError{Notice: NoticeListFailed, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen == r.gen {
		r.sessions = got
	}
	return cloneSessions(got), nil
}

// Create starts a new session and makes it the active one. The visible
// list is left as is until the next List.
func (r *Registry) Create(ctx context.Context, uid, name string) (string, error) {
	in := startSessionInput{UID: uid, Name: name}
	if err := r.validate.Struct(in); err != nil {
		return "", err
	}

	id, err := r.client.StartSession(ctx, uid, strings.TrimSpace(name))
	if err != nil {
		r.log.Error(ctx, "error creating session", "uid", uid, "err", err)
		return "", fmt.Errorf("create session: %w", err)
	}

	r.mu.Lock()
	r.active = id
	r.mu.Unlock()
	return id, nil
}

// Delete removes the session on the backend and then from the visible
// list. On failure nothing changes locally.
func (r *Registry) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.DeleteSession(ctx, sessionID); err != nil {
		r.log.Error(ctx, "error deleting session", "session_id", sessionID, "err", err)
		return fmt.Errorf("delete session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.sessions[:0:0]
	for _, s := range r.sessions {
		if s.ID != sessionID {
			kept = append(kept, s)
		}
	}
	r.sessions = kept
	if r.active == sessionID {
		r.active = ""
	}
	return nil
}

// Sessions returns a copy of the visible list.
func (r *Registry) Sessions() []models.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneSessions(r.sessions)
}

// Active is the id of the session last created or opened, or "".
func (r *Registry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Open marks sessionID as active.
func (r *Registry) Open(sessionID string) {
	r.mu.Lock()
	r.active = sessionID
	r.mu.Unlock()
}

func cloneSessions(in []models.Session) []models.Session {
	if in == nil {
		return nil
	}
	out := make([]models.Session, len(in))
	copy(out, in)
	return out
}
