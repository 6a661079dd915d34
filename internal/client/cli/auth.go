package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/findash/internal/client/api"
	"github.com/dmitrijs2005/findash/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for email and password and signs in. A failed attempt
// leaves the session as it was and prints the backend's reason.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	snap, err := a.auth.Authenticate(ctx, email, password)
	if err != nil {
		a.log.Info(ctx, "login unsuccessful", "error", err)
		fmt.Fprintln(a.out, loginFailureMessage(err))
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s\n", snap.User.DisplayName())
	a.period = nil
	a.settle(ctx)
	return nil
}

func loginFailureMessage(err error) string {
	switch {
	case errors.Is(err, api.ErrUnavailable):
		return "Server unavailable, please try again later."
	case api.Detail(err) != "":
		return "Login failed: " + api.Detail(err)
	}
	return "Login failed."
}

// Register prompts for email and password and creates an account. The
// user then signs in with 'login'.
func (a *App) Register(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.auth.Register(ctx, email, password)
	if err != nil {
		a.log.Info(ctx, "registration unsuccessful", "error", err)
		fmt.Fprintln(a.out, registerFailureMessage(err))
		return err
	}

	fmt.Fprintf(a.out, "Account created for %s. Check your inbox if confirmation is required, then type 'login'.\n", user.DisplayName())
	return nil
}

func registerFailureMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return "Registration failed: " + strings.TrimPrefix(err.Error(), common.ErrorValidation.Error()+": ")
	case errors.Is(err, api.ErrUnavailable):
		return "Server unavailable, please try again later."
	case api.Detail(err) != "":
		return "Registration failed: " + api.Detail(err)
	}
	return "Registration failed."
}

// Logout forgets the session locally and on disk.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sess.Logout(ctx); err != nil {
		a.log.Error(ctx, "failed to clear stored token", "error", err)
		fmt.Fprintln(a.out, "Logout failed: the stored session could not be removed. You are still logged in; please try again.")
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	a.period = nil
	a.settle(ctx)
	return nil
}

// Whoami prints the current session.
func (a *App) Whoami(ctx context.Context) error {
	snap := a.sess.Snapshot()
	if snap.User == nil {
		fmt.Fprintf(a.out, "Not logged in (%s).\n", snap.Status)
		return nil
	}

	fmt.Fprintf(a.out, "%s <%s>\n", snap.User.DisplayName(), snap.User.Email)
	fmt.Fprintf(a.out, "user id: %s\n", snap.User.ID)
	if at, ok, err := a.savedAt.SavedAt(ctx); err == nil && ok {
		fmt.Fprintf(a.out, "signed in since %s\n", at.Local().Format(time.DateTime))
	}
	return nil
}

// SetToken replaces the stored token with one given on the command line
// (or prompted for) and verifies it.
func (a *App) SetToken(ctx context.Context, args []string) error {
	var token string
	if len(args) > 0 {
		token = args[0]
	} else {
		t, err := getSimpleText(a.reader, "Paste access token (empty to clear)", a.out)
		if err != nil {
			return err
		}
		token = t
	}

	if err := a.sess.SetToken(ctx, token); err != nil {
		a.log.Error(ctx, "failed to store token", "error", err)
		return err
	}
	a.period = nil
	a.settle(ctx)
	return nil
}
