package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/skincare/internal/client/models"
	"github.com/dmitrijs2005/skincare/internal/common"
)

func displayName(name string) string {
	if name == "" {
		return "Guest"
	}
	return name
}

// enter resolves the identity and, when someone is signed in, loads their
// profile and session list.
func (a *App) enter(ctx context.Context) {
	id, err := a.identity.Resolve(ctx)
	if err != nil {
		a.uid = ""
		if !errors.Is(err, common.ErrUnauthenticated) {
			a.log.Warn(ctx, "failed to resolve identity", "err", err)
		}
		fmt.Fprintln(a.out, "Welcome, Guest")
		return
	}

	a.uid = id.UID
	a.bridge.Seed(id)

	if view := a.bridge.FetchProfile(ctx, id.UID); view.NeedsName {
		fmt.Fprintln(a.out, "Please tell us your name.")
		_ = a.SetName(ctx)
	}

	fmt.Fprintf(a.out, "Welcome, %s\n", displayName(a.bridge.DisplayName()))
	_ = a.List(ctx)
}

func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintf(a.out, "Already logged in as %s, logout first\n", displayName(a.bridge.DisplayName()))
		return nil
	}

	token, err := getSecret("Identity token", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	if token == "" {
		fmt.Fprintln(a.out, "Token cannot be empty.")
		return common.ErrUnauthenticated
	}

	if _, err := a.signer.SignIn(ctx, token); err != nil {
		var exErr *common.AuthExchangeError
		switch {
		case errors.As(err, &exErr):
			fmt.Fprintf(a.out, "Login unsuccessful: %s\n", exErr.Reason)
		case errors.Is(err, common.ErrUnauthenticated):
			fmt.Fprintln(a.out, "Login unsuccessful: invalid token")
		default:
			fmt.Fprintf(a.out, "Login unsuccessful: %v\n", err)
		}
		return err
	}

	fmt.Fprintln(a.out, "Login successful")
	a.enter(ctx)
	return nil
}

// Logout signs out at the provider and forgets the cached identity.
func (a *App) Logout(ctx context.Context) error {
	err := a.identity.SignOut(ctx)

	a.uid = ""
	a.current = nil
	a.bridge.Seed(&models.Identity{})

	if err != nil {
		a.log.Warn(ctx, "sign-out incomplete", "err", err)
	}
	fmt.Fprintln(a.out, "Logged out")
	return err
}

func (a *App) WhoAmI(_ context.Context) error {
	fmt.Fprintf(a.out, "Welcome, %s\n", displayName(a.bridge.DisplayName()))
	fmt.Fprintf(a.out, "User ID: %s\n", a.uid)
	return nil
}

// SetName asks for a name and stores it in the backend profile.
func (a *App) SetName(ctx context.Context) error {
	name, err := getSimpleText(a.in, "Please enter your name", a.out)
	if err != nil {
		return err
	}

	if err := a.bridge.UpdateProfileName(ctx, a.uid, name); err != nil {
		var ve *common.ValidationError
		if errors.As(err, &ve) {
			fmt.Fprintln(a.out, ve.Message)
		} else {
			fmt.Fprintln(a.out, "Failed to update your name. Please try again.")
		}
		return err
	}

	fmt.Fprintf(a.out, "Name updated to %s\n", a.bridge.DisplayName())
	return nil
}
