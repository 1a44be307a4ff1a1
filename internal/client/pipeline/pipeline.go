// Package pipeline drives one session from loading through image upload to
// a classification result.
//
// The workflow is the pure Transition function in state.go; Pipeline runs
// the effects it asks for one at a time and feeds their outcome back in as
// events. An upload therefore always goes image host, then backend attach,
// then a fresh read of the session, in that order.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/logging"
)

// Backend is the part of the backend API the pipeline needs.
type Backend interface {
	GetSession(ctx context.Context, sessionID string) (*models.SessionDetail, error)
	UploadImage(ctx context.Context, sessionID, uid string, ref models.ImageRef) error
}

// ImageHost stores image bytes and returns where they can be seen and
// deleted. Missing fields are reported as empty strings, not as errors.
type ImageHost interface {
	Upload(ctx context.Context, file models.ImageFile) (models.ImageRef, error)
}

// IdentitySource supplies the stored user id when none was handed over.
type IdentitySource interface {
	Stored(ctx context.Context) (*models.Identity, error)
}

// Notifier shows user-facing notices.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// Upload outcomes reported to Observer.
const (
	OutcomeClassified  = "classified"
	OutcomePending     = "pending"
	OutcomeUnconfirmed = "unconfirmed"
	OutcomeFailed      = "failed"
	OutcomeIncomplete  = "incomplete"
)

// Observer receives state changes and upload outcomes.
type Observer interface {
	StateChanged(from, to State)
	UploadFinished(outcome string, elapsed time.Duration)
}

// Snapshot is a consistent view of the pipeline.
type Snapshot struct {
	State  State
	Detail *models.SessionDetail
	Err    error
}

type Pipeline struct {
	sessionID  string
	handoffUID string

	backend  Backend
	host     ImageHost
	ids      IdentitySource
	notifier Notifier
	observer Observer
	log      logging.Logger
	now      func() time.Time

	mu      sync.Mutex
	state   State
	detail  *models.SessionDetail
	lastErr error
}

type Option func(*Pipeline)

// WithHandoffUID sets the uid passed along when the session was opened; it
// takes precedence over the stored identity.
func WithHandoffUID(uid string) Option {
	return func(p *Pipeline) { p.handoffUID = uid }
}

func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

func WithLogger(l logging.Logger) Option {
	return func(p *Pipeline) { p.log = l }
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New returns a pipeline in the Loading state. Call Load to fetch the
// session.
func New(sessionID string, backend Backend, host ImageHost, ids IdentitySource, opts ...Option) *Pipeline {
	p := &Pipeline{
		sessionID: sessionID,
		backend:   backend,
		host:      host,
		ids:       ids,
		notifier:  NotifierFunc(func(string) {}),
		log:       logging.Discard(),
		now:       time.Now,
		state:     Loading,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) SessionID() string { return p.sessionID }

// Load fetches the session detail once after New. A failure leaves the
// pipeline in LoadFailed; use Reload from there.
func (p *Pipeline) Load(ctx context.Context) error {
	return p.dispatch(ctx, Load{})
}

// Reload fetches the session again after LoadFailed or Unconfirmed.
func (p *Pipeline) Reload(ctx context.Context) error {
	return p.dispatch(ctx, Reload{})
}

// Retry returns an UploadFailed pipeline to NoImage.
func (p *Pipeline) Retry(ctx context.Context) error {
	return p.dispatch(ctx, Retry{})
}

// Submit uploads file and attaches it to the session. Guard failures
// (upload running, image present, not loaded, wrong type, no uid) return
// before any network call.
func (p *Pipeline) Submit(ctx context.Context, file models.ImageFile) error {
	start := p.now()

	started, err := p.dispatchTracked(ctx, Submit{File: file})
	if started && p.observer != nil {
		p.observer.UploadFinished(p.outcome(), p.now().Sub(start))
	}
	return err
}

func (p *Pipeline) outcome() string {
	snap := p.Snapshot()
	switch snap.State {
	case Classified:
		if snap.Detail != nil && snap.Detail.Classification != nil {
			return OutcomeClassified
		}
		return OutcomePending
	case Unconfirmed:
		return OutcomeUnconfirmed
	case NoImage:
		return OutcomeIncomplete
	default:
		return OutcomeFailed
	}
}

func (p *Pipeline) resolveUID(ctx context.Context) string {
	if p.handoffUID != "" {
		return p.handoffUID
	}
	if p.ids == nil {
		return ""
	}
	id, err := p.ids.Stored(ctx)
	if err != nil {
		p.log.Warn(ctx, "failed to read stored identity", "err", err)
		return ""
	}
	if id == nil {
		return ""
	}
	return id.UID
}

// Snapshot returns the current state, detail and last error.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{State: p.state, Detail: p.detail, Err: p.lastErr}
}

func (p *Pipeline) dispatch(ctx context.Context, ev Event) error {
	_, err := p.dispatchTracked(ctx, ev)
	return err
}

// dispatchTracked runs ev and every event its effects produce. started
// reports whether an image host upload was issued.
func (p *Pipeline) dispatchTracked(ctx context.Context, ev Event) (started bool, err error) {
	queue := []Event{ev}
	for len(queue) > 0 {
		ev, queue = queue[0], queue[1:]

		p.mu.Lock()
		from := p.state
		to, effects := Transition(from, ev)
		p.state = to
		p.mu.Unlock()

		if from != to && p.observer != nil {
			p.observer.StateChanged(from, to)
		}

		for _, eff := range effects {
			if _, ok := eff.(UploadToHost); ok {
				started = true
			}
			next, effErr := p.execute(ctx, eff)
			if effErr != nil && err == nil {
				err = effErr
			}
			if next != nil {
				queue = append(queue, next)
			}
		}
	}
	return started, err
}

// execute runs one effect. Network effects turn their outcome into the
// next event; Fail turns into the returned error.
func (p *Pipeline) execute(ctx context.Context, eff Effect) (Event, error) {
	switch e := eff.(type) {
	case FetchDetail:
		d, err := p.backend.GetSession(ctx, p.sessionID)
		if e.Refresh {
			if err != nil {
				p.log.Warn(ctx, "failed to refresh session after upload", "session_id", p.sessionID, "err", err)
				return RefreshFailed{Err: err}, nil
			}
			return Refreshed{Detail: d}, nil
		}
		if err != nil {
			p.log.Error(ctx, "failed to fetch session details", "session_id", p.sessionID, "err", err)
			return DetailLoadFailed{Err: err}, nil
		}
		return DetailLoaded{Detail: d}, nil

	case ResolveIdentity:
		return IdentityResolved{File: e.File, UID: p.resolveUID(ctx)}, nil

	case UploadToHost:
		ref, err := p.host.Upload(ctx, e.File)
		if err != nil {
			p.log.Error(ctx, "image host upload failed", "session_id", p.sessionID, "err", err)
			return HostFailed{Err: err}, nil
		}
		return HostUploaded{Ref: ref, UID: e.UID}, nil

	case AttachImage:
		if err := p.backend.UploadImage(ctx, p.sessionID, e.UID, e.Ref); err != nil {
			return AttachFailed{Ref: e.Ref, Err: err}, nil
		}
		return Attached{Ref: e.Ref}, nil

	case StoreDetail:
		p.mu.Lock()
		p.detail = e.Detail
		p.lastErr = nil
		p.mu.Unlock()

	case StoreImage:
		p.mu.Lock()
		d := &models.SessionDetail{}
		if p.detail != nil {
			cp := *p.detail
			d = &cp
		}
		ref := e.Ref
		d.Image = &ref
		p.detail = d
		p.mu.Unlock()

	case Fail:
		if !errors.Is(e.Err, ErrInvalidTransition) {
			p.mu.Lock()
			p.lastErr = e.Err
			p.mu.Unlock()
		}
		return nil, e.Err

	case Notify:
		p.notifier.Notify(e.Message)

	case LogOrphan:
		p.log.Warn(ctx, "image left on host after backend attach failed",
			"session_id", p.sessionID, "display_url", e.Ref.DisplayURL, "delete_url", e.Ref.DeleteURL, "err", e.Err)
	}
	return nil, nil
}
