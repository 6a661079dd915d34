// Package views decides which terminal screen the client shows. Guard gates
// protected screens on the session; Selector picks the screen the user lands
// on after the session settles.
package views

import "github.com/dmitrijs2005/findash/internal/client/session"

// View is one of the client's screens.
type View int

const (
	Loading View = iota
	Login
	Upload
	Dashboard
)

func (v View) String() string {
	switch v {
	case Loading:
		return "loading"
	case Login:
		return "login"
	case Upload:
		return "upload"
	case Dashboard:
		return "dashboard"
	}
	return "unknown"
}

// Action is what a guarded screen should do.
type Action int

const (
	// Placeholder: the session is still resolving, show a loading screen.
	Placeholder Action = iota
	// Redirect: go to Decision.To, replacing the current screen in history.
	Redirect
	// Render: show the protected content.
	Render
)

type Decision struct {
	Action  Action
	To      View
	Replace bool
}

// Guard decides whether protected content may render for snap.
func Guard(snap session.Snapshot) Decision {
	switch {
	case snap.Status.Resolving():
		return Decision{Action: Placeholder}
	case !snap.Authenticated():
		return Decision{Action: Redirect, To: Login, Replace: true}
	}
	return Decision{Action: Render}
}
