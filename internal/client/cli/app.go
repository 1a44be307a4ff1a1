package cli

import (
	"bufio"
	"context"
	"io"
	"log"

	"github.com/dmitrijs2005/skincare/internal/client/identity"
	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/client/pipeline"
	"github.com/dmitrijs2005/skincare/internal/client/services"
	"github.com/dmitrijs2005/skincare/internal/filex"
	"github.com/dmitrijs2005/skincare/internal/logging"
)

// signer is the identity provider as the shell sees it.
type signer interface {
	SignIn(ctx context.Context, raw string) (*identity.Principal, error)
	Restore(ctx context.Context) error
}

type identityResolver interface {
	Resolve(ctx context.Context) (*models.Identity, error)
	SignOut(ctx context.Context) error
}

type profileBridge interface {
	Seed(id *models.Identity)
	DisplayName() string
	FetchProfile(ctx context.Context, uid string) services.ProfileView
	UpdateProfileName(ctx context.Context, uid, name string) error
}

type sessionRegistry interface {
	List(ctx context.Context, uid string) ([]models.Session, error)
	Create(ctx context.Context, uid, name string) (string, error)
	Delete(ctx context.Context, sessionID string) error
	Sessions() []models.Session
	Open(sessionID string)
}

type sessionPipeline interface {
	SessionID() string
	Load(ctx context.Context) error
	Reload(ctx context.Context) error
	Retry(ctx context.Context) error
	Submit(ctx context.Context, file models.ImageFile) error
	Snapshot() pipeline.Snapshot
}

// pipelineFactory builds the pipeline for a session opened by uid.
type pipelineFactory func(sessionID, uid string) sessionPipeline

type App struct {
	signer      signer
	identity    identityResolver
	bridge      profileBridge
	registry    sessionRegistry
	newPipeline pipelineFactory
	readImage   func(path string) (models.ImageFile, error)
	log         logging.Logger
	closeFn     func() error

	// in is shared by the REPL and the prompts so neither buffers input
	// the other needs.
	in  *bufio.Scanner
	out io.Writer

	uid     string
	current sessionPipeline
}

func (a *App) isLoggedIn() bool {
	return a.uid != ""
}

func (a *App) getStatus() string {
	if !a.isLoggedIn() {
		return "(guest)"
	}
	s := displayName(a.bridge.DisplayName())
	if a.current != nil {
		s += " " + a.current.SessionID()
	}
	return "(" + s + ")"
}

// Run greets the user and blocks in the REPL until exit or EOF.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if a.closeFn != nil {
			if err := a.closeFn(); err != nil {
				log.Printf("error closing resources: %v", err)
			}
		}
	}()

	log.Println("Welcome to skincare CLI (type 'help' for commands)")

	if err := a.signer.Restore(ctx); err != nil {
		a.log.Warn(ctx, "failed to restore sign-in", "err", err)
	}
	a.enter(ctx)

	runREPL(ctx, a, a.getStatus, a.in)
}

func (a *App) imageReader() func(string) (models.ImageFile, error) {
	if a.readImage != nil {
		return a.readImage
	}
	return filex.ReadImage
}
