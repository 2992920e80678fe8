package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jpalma/trak/internal/api"
	"github.com/jpalma/trak/internal/models"
	"github.com/jpalma/trak/internal/stats"
	"github.com/jpalma/trak/internal/ui/keys"
	"github.com/jpalma/trak/internal/ui/styles"
)

// DashboardView shows the derived task counters and quick navigation.
type DashboardView struct {
	client *api.Client
	svc    *stats.Service
	user   models.User
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	seq     int
	loading bool
	errMsg  string
	stats   *models.DashboardStats
}

// NewDashboardView creates the dashboard screen
func NewDashboardView(client *api.Client, svc *stats.Service, user models.User) *DashboardView {
	return &DashboardView{
		client: client,
		svc:    svc,
		user:   user,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

type statsLoadedMsg struct {
	seq   int
	stats *models.DashboardStats
}

func (v *DashboardView) Init() tea.Cmd {
	return v.load()
}

func (v *DashboardView) load() tea.Cmd {
	v.seq++
	v.loading = true
	v.errMsg = ""
	seq := v.seq
	return func() tea.Msg {
		st, err := v.svc.Load(context.Background())
		if err != nil {
			return err
		}
		return statsLoadedMsg{seq: seq, stats: st}
	}
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case statsLoadedMsg:
		if msg.seq != v.seq {
			// A newer load is in flight; drop the stale result
			return v, nil
		}
		v.loading = false
		v.stats = msg.stats
		return v, nil

	case error:
		v.loading = false
		v.stats = nil
		v.errMsg = api.Message(msg, "could not load dashboard stats")
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit
		case key.Matches(msg, v.keys.Reload):
			return v, v.load()
		case key.Matches(msg, v.keys.Logout):
			return v, func() tea.Msg {
				v.client.Logout()
				return LoggedOut{}
			}
		case msg.String() == "p":
			return v, func() tea.Msg { return GoTo{Screen: ScreenProjects} }
		case msg.String() == "t":
			return v, func() tea.Msg { return GoTo{Screen: ScreenTasks} }
		case msg.String() == "m":
			return v, func() tea.Msg { return GoTo{Screen: ScreenTeam} }
		}
	}

	return v, nil
}

func (v *DashboardView) statCard(label string, value int, color lipgloss.Color) string {
	s := v.styles
	return s.StatCard.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.StatLabel.Render(label),
		s.StatValue.Foreground(color).Render(fmt.Sprintf("%d", value)),
	))
}

// View renders the view
func (v *DashboardView) View() string {
	s := v.styles
	t := styles.Current
	contentWidth := styles.ContentWidth(v.width)

	header := s.Title.Render("Dashboard")
	if v.user.Name != "" {
		header += s.TitleMuted.Render("  " + v.user.Name)
	}

	var body string
	switch {
	case v.loading:
		body = s.TitleMuted.Render("Loading...")
	case v.errMsg != "":
		body = s.ErrorBanner.Render(v.errMsg) + "\n" +
			s.TitleMuted.Render("Press 'r' to retry")
	case v.stats != nil:
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			v.statCard("Total", v.stats.TotalTasks, t.Info),
			v.statCard("Completed", v.stats.CompletedTasks, t.Success),
			v.statCard("Pending", v.stats.PendingTasks, t.Warning),
			v.statCard("Overdue", v.stats.OverdueTasks, t.Error),
		)
	}

	activity := s.Panel.Width(clamp(contentWidth-4, 20, 60)).Render(
		s.Title.Render("Recent Activity") + "\n" +
			s.TitleMuted.Render("Live updates will appear here..."),
	)

	help := s.Help.Render(
		fmt.Sprintf("%s projects • %s tasks • %s team • %s reload • %s sign out • %s quit",
			s.HelpKey.Render("p"),
			s.HelpKey.Render("t"),
			s.HelpKey.Render("m"),
			s.HelpKey.Render("r"),
			s.HelpKey.Render("ctrl+x"),
			s.HelpKey.Render("q"),
		),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		activity,
		help,
	)
	return styles.CenterView(content, v.width, v.height)
}
