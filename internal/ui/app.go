package ui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jpalma/trak/internal/api"
	"github.com/jpalma/trak/internal/models"
	"github.com/jpalma/trak/internal/session"
	"github.com/jpalma/trak/internal/stats"
	"github.com/jpalma/trak/internal/ui/views"
)

// keyLastScreen remembers where the user was across restarts
const keyLastScreen = "last_screen"

// App is the top-level shell. It owns screen switching and is the single
// place that turns classified API errors into navigation: an expired
// session lands on the login screen, a vanished resource lands on the
// dashboard. Views only ever see the errors that remain.
type App struct {
	client   *api.Client
	store    *session.Store
	stats    *stats.Service
	pageSize int

	user    models.User
	screen  views.Screen
	current tea.Model
	width   int
	height  int
}

// NewApp creates the application shell. A previously saved session skips
// the login screen; the token is trusted until the server rejects it.
func NewApp(client *api.Client, store *session.Store, pageSize int) *App {
	a := &App{
		client:   client,
		store:    store,
		stats:    stats.New(client, nil),
		pageSize: pageSize,
	}

	if _, user, ok := store.Restore(); ok {
		a.user = *user
		a.screen, a.current = a.buildScreen(a.lastScreen())
	} else {
		a.screen = views.ScreenLogin
		a.current = views.NewLoginView(client)
	}

	return a
}

// lastScreen reads the persisted screen, defaulting to the dashboard.
// Project detail screens are stored as "project/<id>".
func (a *App) lastScreen() string {
	name, err := a.store.GetSetting(keyLastScreen)
	if err != nil || name == "" {
		return "dashboard"
	}
	return name
}

func (a *App) buildScreen(name string) (views.Screen, tea.Model) {
	if id, ok := strings.CutPrefix(name, "project/"); ok {
		if _, err := models.ParseID(id); err == nil {
			return views.ScreenProjectDetail, views.NewProjectDetailView(a.client, id)
		}
		return views.ScreenProjects, views.NewProjectsView(a.client, a.pageSize)
	}

	switch name {
	case "projects":
		return views.ScreenProjects, views.NewProjectsView(a.client, a.pageSize)
	case "tasks":
		return views.ScreenTasks, views.NewTasksView(a.client, a.pageSize)
	case "team":
		return views.ScreenTeam, views.NewTeamView(a.client)
	default:
		return views.ScreenDashboard, views.NewDashboardView(a.client, a.stats, a.user)
	}
}

func screenName(s views.Screen) string {
	switch s {
	case views.ScreenProjects:
		return "projects"
	case views.ScreenTasks:
		return "tasks"
	case views.ScreenTeam:
		return "team"
	default:
		return "dashboard"
	}
}

func (a *App) Init() tea.Cmd {
	return a.current.Init()
}

// switchTo replaces the current view and re-initializes it. Views are
// constructed fresh on every navigation so each mount starts with a clean
// load.
func (a *App) switchTo(screen views.Screen, view tea.Model, persist string) tea.Cmd {
	a.screen = screen
	a.current = view
	if persist != "" {
		a.store.SetSetting(keyLastScreen, persist)
	}
	return tea.Batch(
		view.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) goTo(screen views.Screen) tea.Cmd {
	name := screenName(screen)
	s, view := a.buildScreen(name)
	return a.switchTo(s, view, name)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case views.LoggedIn:
		a.user = msg.User
		return a, a.goTo(views.ScreenDashboard)

	case views.LoggedOut:
		a.user = models.User{}
		a.store.SetSetting(keyLastScreen, "")
		return a, a.switchTo(views.ScreenLogin, views.NewLoginView(a.client), "")

	case views.GoTo:
		return a, a.goTo(msg.Screen)

	case views.OpenProject:
		id := models.FormatID(msg.Project.ID)
		return a, a.switchTo(views.ScreenProjectDetail,
			views.NewProjectDetailView(a.client, id), "project/"+id)

	case error:
		switch {
		case errors.Is(msg, api.ErrSessionExpired):
			// The client already cleared the stored session
			a.user = models.User{}
			a.store.SetSetting(keyLastScreen, "")
			return a, a.switchTo(views.ScreenLogin, views.NewLoginView(a.client), "")
		case errors.Is(msg, api.ErrResourceGone):
			return a, a.goTo(views.ScreenDashboard)
		}
		// Anything else is the current view's to report
	}

	var cmd tea.Cmd
	a.current, cmd = a.current.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	return a.current.View()
}
