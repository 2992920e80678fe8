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

// ProjectDetailView shows a single project with its embedded task list.
type ProjectDetailView struct {
	client    *api.Client
	projectID string
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int

	project *models.Project
	cursor  int

	seq     int
	loading bool
	errMsg  string
}

// NewProjectDetailView creates the detail screen for one project
func NewProjectDetailView(client *api.Client, projectID string) *ProjectDetailView {
	return &ProjectDetailView{
		client:    client,
		projectID: projectID,
		styles:    styles.NewStyles(),
		keys:      keys.DefaultKeyMap(),
	}
}

type projectLoadedMsg struct {
	seq     int
	project *models.Project
}

func (v *ProjectDetailView) Init() tea.Cmd {
	return v.load()
}

func (v *ProjectDetailView) load() tea.Cmd {
	v.seq++
	v.loading = true
	v.errMsg = ""
	seq := v.seq
	return func() tea.Msg {
		p, err := v.client.GetProject(context.Background(), v.projectID)
		if err != nil {
			return err
		}
		return projectLoadedMsg{seq: seq, project: p}
	}
}

func (v *ProjectDetailView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case projectLoadedMsg:
		if msg.seq != v.seq {
			return v, nil
		}
		v.loading = false
		v.project = msg.project
		if v.cursor >= len(v.project.Tasks) {
			v.cursor = max(0, len(v.project.Tasks)-1)
		}
		return v, nil

	case reloadMsg:
		return v, v.load()

	case error:
		v.loading = false
		v.errMsg = api.Message(msg, "could not load project")
		return v, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit

		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return GoTo{Screen: ScreenProjects} }

		case key.Matches(msg, v.keys.Up):
			if v.cursor > 0 {
				v.cursor--
			}
			return v, nil

		case key.Matches(msg, v.keys.Down):
			if v.project != nil && v.cursor < len(v.project.Tasks)-1 {
				v.cursor++
			}
			return v, nil

		case key.Matches(msg, v.keys.Reload):
			return v, v.load()

		case msg.String() == "x":
			if t, ok := v.selectedTask(); ok && t.Status != models.TaskCompleted {
				return v, v.changeStatus(t, models.TaskCompleted)
			}
			return v, nil

		case msg.String() == "b":
			if t, ok := v.selectedTask(); ok && t.Status == models.TaskTodo {
				return v, v.changeStatus(t, models.TaskInProgress)
			}
			return v, nil

		case msg.String() == "t":
			return v, func() tea.Msg { return GoTo{Screen: ScreenTasks} }
		}
	}

	return v, nil
}

func (v *ProjectDetailView) selectedTask() (models.Task, bool) {
	if v.project == nil || len(v.project.Tasks) == 0 {
		return models.Task{}, false
	}
	return v.project.Tasks[v.cursor], true
}

func (v *ProjectDetailView) changeStatus(task models.Task, status models.TaskStatus) tea.Cmd {
	id := models.FormatID(task.ID)
	return func() tea.Msg {
		if _, err := v.client.UpdateTaskStatus(context.Background(), id, status); err != nil {
			return err
		}
		return reloadMsg{}
	}
}

// View renders the view
func (v *ProjectDetailView) View() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var rows []string

	switch {
	case v.loading || (v.project == nil && v.errMsg == ""):
		rows = append(rows, s.TitleMuted.Render("Loading..."))
	case v.errMsg != "":
		rows = append(rows, s.ErrorBanner.Render(v.errMsg))
	default:
		p := v.project
		statusBadge := s.Badge.Foreground(styles.ProjectStatusColor(p.Status)).Render(string(p.Status))
		rows = append(rows, s.Title.Render(p.Name)+" "+statusBadge)
		if p.Description != nil && *p.Description != "" {
			rows = append(rows, s.TitleMuted.Render(*p.Description))
		}
		rows = append(rows, "", s.Title.Render(fmt.Sprintf("Tasks (%d)", len(p.Tasks))))

		if len(p.Tasks) == 0 {
			rows = append(rows, s.TitleMuted.Render("No tasks yet."))
		} else {
			width := max(contentWidth-4, 20)
			for i, t := range p.Tasks {
				rows = append(rows, v.renderTask(t, i == v.cursor, width))
			}
		}
	}

	rows = append(rows, v.renderHelp())
	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectDetailView) renderTask(t models.Task, selected bool, width int) string {
	s := v.styles

	statusBadge := s.Badge.Foreground(styles.TaskStatusColor(t.Status)).Render(string(t.Status))
	prioBadge := s.Badge.Foreground(styles.PriorityColor(t.Priority)).Render(string(t.Priority))

	extras := ""
	if t.AssignedUser != nil {
		extras += "  @" + t.AssignedUser.Name
	}
	if t.DueDate != nil {
		extras += "  due " + *t.DueDate
	}

	line := t.Title + " " + statusBadge + prioBadge + s.TitleMuted.Render(extras)
	if selected {
		return s.ListSelected.Width(width).Render(line)
	}
	return s.ListItem.Width(width).Render(line)
}

func (v *ProjectDetailView) renderHelp() string {
	s := v.styles
	return s.Help.Render(
		fmt.Sprintf("%s done • %s begin • %s all tasks • %s reload • %s back",
			s.HelpKey.Render("x"),
			s.HelpKey.Render("b"),
			s.HelpKey.Render("t"),
			s.HelpKey.Render("r"),
			s.HelpKey.Render("esc"),
		),
	)
}
