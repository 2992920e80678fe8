// Package views holds the per-screen view-state controllers. Each view owns
// its local UI state (filters, page, form fields), loads data through the
// API client via tea commands, and reloads the authoritative list after
// every mutation instead of patching local state.
package views

import "github.com/jpalma/trak/internal/models"

// Screen identifies a top-level screen the app shell can switch to.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenDashboard
	ScreenProjects
	ScreenProjectDetail
	ScreenTasks
	ScreenTeam
)

// GoTo asks the app shell to switch screens.
type GoTo struct {
	Screen Screen
}

// OpenProject asks the app shell to open a project's detail screen.
type OpenProject struct {
	Project models.Project
}

// LoggedIn signals a completed sign-in.
type LoggedIn struct {
	User models.User
}

// LoggedOut signals that the local session was discarded.
type LoggedOut struct{}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
