package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jpalma/trak/internal/api"
	"github.com/jpalma/trak/internal/models"
	"github.com/jpalma/trak/internal/ui/keys"
	"github.com/jpalma/trak/internal/ui/styles"
)

// TeamView lists team members and drills into one member's assigned tasks.
type TeamView struct {
	client *api.Client
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	members []models.TeamMember
	cursor  int

	// Drill-down state; nil selected means the member list is showing
	selected    *models.TeamMember
	memberTasks []models.Task
	taskCursor  int

	seq     int
	loading bool
	loaded  bool
	errMsg  string
}

// NewTeamView creates the team screen
func NewTeamView(client *api.Client) *TeamView {
	return &TeamView{
		client: client,
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
	}
}

type membersLoadedMsg struct {
	seq     int
	members []models.TeamMember
}

type memberTasksLoadedMsg struct {
	seq   int
	tasks []models.Task
}

func (v *TeamView) Init() tea.Cmd {
	return v.load()
}

func (v *TeamView) load() tea.Cmd {
	v.seq++
	v.loading = true
	v.errMsg = ""
	seq := v.seq
	return func() tea.Msg {
		members, err := v.client.TeamMembers(context.Background())
		if err != nil {
			return err
		}
		return membersLoadedMsg{seq: seq, members: members}
	}
}

func (v *TeamView) loadMemberTasks(member models.TeamMember) tea.Cmd {
	v.seq++
	v.loading = true
	v.errMsg = ""
	seq := v.seq
	id := models.FormatID(member.ID)
	return func() tea.Msg {
		tasks, err := v.client.MemberTasks(context.Background(), id)
		if err != nil {
			return err
		}
		return memberTasksLoadedMsg{seq: seq, tasks: tasks}
	}
}

func (v *TeamView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case membersLoadedMsg:
		if msg.seq != v.seq {
			return v, nil
		}
		v.loading = false
		v.loaded = true
		v.members = msg.members
		if v.cursor >= len(v.members) {
			v.cursor = max(0, len(v.members)-1)
		}
		return v, nil

	case memberTasksLoadedMsg:
		if msg.seq != v.seq {
			return v, nil
		}
		v.loading = false
		v.memberTasks = msg.tasks
		v.taskCursor = 0
		return v, nil

	case error:
		v.loading = false
		v.loaded = true
		v.errMsg = api.Message(msg, "could not load team")
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit

		case key.Matches(msg, v.keys.Back):
			if v.selected != nil {
				v.selected = nil
				v.memberTasks = nil
				return v, nil
			}
			return v, func() tea.Msg { return GoTo{Screen: ScreenDashboard} }

		case key.Matches(msg, v.keys.Up):
			if v.selected != nil {
				if v.taskCursor > 0 {
					v.taskCursor--
				}
			} else if v.cursor > 0 {
				v.cursor--
			}
			return v, nil

		case key.Matches(msg, v.keys.Down):
			if v.selected != nil {
				if v.taskCursor < len(v.memberTasks)-1 {
					v.taskCursor++
				}
			} else if v.cursor < len(v.members)-1 {
				v.cursor++
			}
			return v, nil

		case key.Matches(msg, v.keys.Enter):
			if v.selected == nil && len(v.members) > 0 {
				m := v.members[v.cursor]
				v.selected = &m
				return v, v.loadMemberTasks(m)
			}
			return v, nil

		case key.Matches(msg, v.keys.Reload):
			if v.selected != nil {
				return v, v.loadMemberTasks(*v.selected)
			}
			return v, v.load()
		}
	}

	return v, nil
}

// View renders the view
func (v *TeamView) View() string {
	if v.selected != nil {
		return v.renderMemberTasks()
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	rows := []string{s.Title.Render("Team"), ""}

	switch {
	case !v.loaded || v.loading:
		rows = append(rows, s.TitleMuted.Render("Loading..."))
	case v.errMsg != "":
		rows = append(rows, s.ErrorBanner.Render(v.errMsg))
	case len(v.members) == 0:
		rows = append(rows, s.TitleMuted.Render("No team members."))
	default:
		width := max(contentWidth-4, 20)
		for i, m := range v.members {
			line := m.Name + s.TitleMuted.Render("  "+m.Email)
			if i == v.cursor {
				rows = append(rows, s.ListSelected.Width(width).Render(line))
			} else {
				rows = append(rows, s.ListItem.Width(width).Render(line))
			}
		}
	}

	rows = append(rows, s.Help.Render(
		fmt.Sprintf("%s tasks • %s reload • %s back",
			s.HelpKey.Render("enter"),
			s.HelpKey.Render("r"),
			s.HelpKey.Render("esc"),
		),
	))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.CenterView(content, v.width, v.height)
}

func (v *TeamView) renderMemberTasks() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	rows := []string{s.Title.Render(v.selected.Name + "'s tasks"), ""}

	switch {
	case v.loading:
		rows = append(rows, s.TitleMuted.Render("Loading..."))
	case v.errMsg != "":
		rows = append(rows, s.ErrorBanner.Render(v.errMsg))
	case len(v.memberTasks) == 0:
		rows = append(rows, s.TitleMuted.Render("No tasks assigned."))
	default:
		width := max(contentWidth-4, 20)
		for i, t := range v.memberTasks {
			statusBadge := s.Badge.Foreground(styles.TaskStatusColor(t.Status)).Render(string(t.Status))
			extras := ""
			if t.Project != nil {
				extras = "  " + t.Project.Name
			}
			line := t.Title + " " + statusBadge + s.TitleMuted.Render(extras)
			if i == v.taskCursor {
				rows = append(rows, s.ListSelected.Width(width).Render(line))
			} else {
				rows = append(rows, s.ListItem.Width(width).Render(line))
			}
		}
	}

	rows = append(rows, s.Help.Render(
		fmt.Sprintf("%s reload • %s back",
			s.HelpKey.Render("r"),
			s.HelpKey.Render("esc"),
		),
	))

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.CenterView(content, v.width, v.height)
}
