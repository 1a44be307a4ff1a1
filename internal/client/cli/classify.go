package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/skincare/internal/client/pipeline"
	"github.com/dmitrijs2005/skincare/internal/common"
)

var errNoSessionOpen = errors.New("no session open")

func (a *App) requireSession() (sessionPipeline, error) {
	if a.current == nil {
		fmt.Fprintln(a.out, "No session open. Use 'open' or 'new' first.")
		return nil, errNoSessionOpen
	}
	return a.current, nil
}

// Upload sends a local JPG to the open session. Outcome notices are printed
// by the pipeline's notifier.
func (a *App) Upload(ctx context.Context) error {
	p, err := a.requireSession()
	if err != nil {
		return err
	}

	path, err := getSimpleText(a.in, "Path to a JPG image", a.out)
	if err != nil {
		return err
	}

	file, err := a.imageReader()(path)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	if err := p.Submit(ctx, file); err != nil {
		if msg := submitMessage(err); msg != "" {
			fmt.Fprintln(a.out, msg)
		}
		return err
	}

	a.render(p.Snapshot())
	return nil
}

// submitMessage returns the notice for errors the pipeline does not
// announce itself.
func submitMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidFileType):
		return "Only JPG images are allowed."
	case errors.Is(err, common.ErrMissingIdentity):
		return "User ID not found. Please log in again."
	case errors.Is(err, common.ErrImageAlreadyAttached):
		return "Only 1 image per session is allowed."
	case errors.Is(err, common.ErrUploadInProgress):
		return "An upload is already in progress."
	case errors.Is(err, common.ErrNotReady):
		return "The session is not loaded yet."
	}
	return ""
}

func (a *App) Show(_ context.Context) error {
	p, err := a.requireSession()
	if err != nil {
		return err
	}
	a.render(p.Snapshot())
	return nil
}

// Retry clears a failed upload so another image can be chosen.
func (a *App) Retry(ctx context.Context) error {
	p, err := a.requireSession()
	if err != nil {
		return err
	}
	if err := p.Retry(ctx); err != nil {
		fmt.Fprintln(a.out, "Nothing to retry.")
		return err
	}
	fmt.Fprintln(a.out, "Ready for a new image.")
	return nil
}

func (a *App) Reload(ctx context.Context) error {
	p, err := a.requireSession()
	if err != nil {
		return err
	}
	if err := p.Reload(ctx); err != nil {
		if errors.Is(err, pipeline.ErrInvalidTransition) {
			fmt.Fprintln(a.out, "The session is already up to date.")
		} else {
			fmt.Fprintln(a.out, "Failed to load session details.")
		}
		return err
	}
	a.render(p.Snapshot())
	return nil
}

func (a *App) render(s pipeline.Snapshot) {
	d := s.Detail
	if d == nil {
		fmt.Fprintf(a.out, "State: %s\n", s.State)
		return
	}

	name := d.Name
	if name == "" {
		name = "Unnamed Session"
	}
	fmt.Fprintf(a.out, "Session: %s\n", name)
	if !d.CreatedAt.IsZero() {
		fmt.Fprintf(a.out, "Created: %s\n", d.CreatedAt.Local().Format(timeLayout))
	}
	fmt.Fprintf(a.out, "State: %s\n", s.State)

	if d.Image != nil && d.Image.DisplayURL != "" {
		fmt.Fprintf(a.out, "Image: %s\n", d.Image.DisplayURL)
	} else if s.State == pipeline.NoImage {
		fmt.Fprintln(a.out, "No image yet. Type 'upload' to add one.")
	}

	if c := d.Classification; c != nil {
		fmt.Fprintf(a.out, "Acne type: %s\n", c.AcneType)
		fmt.Fprintf(a.out, "Confidence: %s\n", c.ConfidencePercent())
		fmt.Fprintf(a.out, "Recommendations: %s\n", c.RecommendationsText())
	} else if d.Image != nil {
		fmt.Fprintln(a.out, "Classification pending.")
	}
}
