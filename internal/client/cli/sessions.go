package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/skincare/internal/client/services"
	"github.com/dmitrijs2005/skincare/internal/common"
)

const timeLayout = "2006-01-02 15:04:05"

var errNoSessionChosen = errors.New("no session chosen")

func (a *App) List(ctx context.Context) error {
	list, err := a.registry.List(ctx, a.uid)
	if err != nil {
		var ne *services.NoticeError
		if errors.As(err, &ne) {
			fmt.Fprintln(a.out, ne.Notice)
		} else {
			fmt.Fprintf(a.out, "error: %v\n", err)
		}
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(a.out, "No sessions yet. Type 'new' to start one.")
		return nil
	}

	for i, s := range list {
		line := fmt.Sprintf("%d. %s (%s)", i+1, s.Title(), s.ID)
		if !s.CreatedAt.IsZero() {
			line += " " + s.CreatedAt.Local().Format(timeLayout)
		}
		if s.Classification != nil {
			line += " [" + s.Classification.AcneType + "]"
		}
		fmt.Fprintln(a.out, line)
	}
	return nil
}

// New starts a session, refreshes the listing so numeric picks include it,
// and opens it.
func (a *App) New(ctx context.Context) error {
	name, err := getSimpleText(a.in, "Session name", a.out)
	if err != nil {
		return err
	}

	id, err := a.registry.Create(ctx, a.uid, name)
	if err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintln(a.out, ve.Message)
		} else {
			fmt.Fprintln(a.out, "Failed to create session. Please try again.")
		}
		return err
	}

	fmt.Fprintf(a.out, "Session %s created\n", id)
	if _, err := a.registry.List(ctx, a.uid); err != nil {
		a.log.Warn(ctx, "failed to refresh sessions after create", "session_id", id, "err", err)
	}
	return a.open(ctx, id)
}

func (a *App) Delete(ctx context.Context) error {
	id, err := a.pickSession("Session to delete (number or id)")
	if err != nil {
		return err
	}

	if err := a.registry.Delete(ctx, id); err != nil {
		fmt.Fprintln(a.out, "Failed to delete session. Please try again.")
		return err
	}

	if a.current != nil && a.current.SessionID() == id {
		a.current = nil
	}
	fmt.Fprintln(a.out, "Session deleted")
	return nil
}

func (a *App) Open(ctx context.Context) error {
	id, err := a.pickSession("Session to open (number or id)")
	if err != nil {
		return err
	}
	return a.open(ctx, id)
}

func (a *App) open(ctx context.Context, id string) error {
	a.registry.Open(id)
	p := a.newPipeline(id, a.uid)
	a.current = p

	if err := p.Load(ctx); err != nil {
		fmt.Fprintln(a.out, "Failed to load session details. Type 'reload' to try again.")
		return err
	}
	a.render(p.Snapshot())
	return nil
}

// pickSession accepts a position in the last listing or a raw session id.
func (a *App) pickSession(prompt string) (string, error) {
	in, err := getSimpleText(a.in, prompt, a.out)
	if err != nil {
		return "", err
	}
	if in == "" {
		fmt.Fprintln(a.out, "No session chosen.")
		return "", errNoSessionChosen
	}

	if n, err := strconv.Atoi(in); err == nil {
		list := a.registry.Sessions()
		if n >= 1 && n <= len(list) {
			return list[n-1].ID, nil
		}
	}
	return in, nil
}
