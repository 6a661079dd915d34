package views

import (
	"testing"

	"github.com/dmitrijs2005/findash/internal/client/models"
	"github.com/dmitrijs2005/findash/internal/client/session"
	"github.com/stretchr/testify/assert"
)

func TestGuard(t *testing.T) {
	user := &models.User{ID: "u-1"}
	tests := []struct {
		name string
		snap session.Snapshot
		want Decision
	}{
		{"unverified", session.Snapshot{Token: "t", Status: session.Unverified}, Decision{Action: Placeholder}},
		{"verifying", session.Snapshot{Token: "t", Status: session.Verifying}, Decision{Action: Placeholder}},
		{"anonymous", session.Snapshot{Status: session.Anonymous}, Decision{Action: Redirect, To: Login, Replace: true}},
		{"anonymous with kept token", session.Snapshot{Token: "t", Status: session.Anonymous}, Decision{Action: Redirect, To: Login, Replace: true}},
		{"verified", session.Snapshot{Token: "t", User: user, Status: session.Verified}, Decision{Action: Render}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Guard(tt.snap))
		})
	}
}

func TestView_String(t *testing.T) {
	assert.Equal(t, "dashboard", Dashboard.String())
	assert.Equal(t, "unknown", View(9).String())
}
