package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jpalma/trak/internal/api"
	"github.com/jpalma/trak/internal/models"
	"github.com/jpalma/trak/internal/ui/keys"
	"github.com/jpalma/trak/internal/ui/styles"
)

// ProjectsView is the paginated, filterable project list.
type ProjectsView struct {
	client   *api.Client
	pageSize int
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	projects   []models.Project
	page       int
	totalPages int
	cursor     int

	// Filters. statusIdx indexes into projectStatusOptions; 0 means no filter.
	searchInput textinput.Model
	searching   bool
	statusIdx   int

	seq     int
	loading bool
	loaded  bool
	errMsg  string

	// Create/edit form
	editing        bool
	editingProject *models.Project // nil when creating
	formName       textinput.Model
	formDesc       textinput.Model
	formState      int // index into projectStatusOptions, 0 = leave unset on create
	focusIdx       int // 0=name, 1=desc, 2=status, 3=save

	// Delete confirmation
	confirmingDelete bool
	deleteTarget     models.Project
}

// projectStatusOptions is the status filter cycle: all, then each project status.
var projectStatusOptions = append([]models.ProjectStatus{""}, models.ProjectStatuses()...)

// NewProjectsView creates the project list screen
func NewProjectsView(client *api.Client, pageSize int) *ProjectsView {
	search := textinput.New()
	search.Placeholder = "Search projects..."
	search.CharLimit = 100

	formName := textinput.New()
	formName.Placeholder = "Project name"
	formName.CharLimit = 100

	formDesc := textinput.New()
	formDesc.Placeholder = "Description (optional)"
	formDesc.CharLimit = 200

	return &ProjectsView{
		client:      client,
		pageSize:    pageSize,
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		page:        1,
		totalPages:  1,
		searchInput: search,
		formName:    formName,
		formDesc:    formDesc,
	}
}

type projectsLoadedMsg struct {
	seq  int
	page *api.ProjectPage
}

func (v *ProjectsView) Init() tea.Cmd {
	return v.load()
}

// load snapshots the current filters and page, then fetches. The sequence
// number lets Update drop responses that a newer load has overtaken.
func (v *ProjectsView) load() tea.Cmd {
	v.seq++
	v.loading = true
	v.errMsg = ""
	seq := v.seq
	q := api.ProjectQuery{
		Page:   v.page,
		Limit:  v.pageSize,
		Search: strings.TrimSpace(v.searchInput.Value()),
		Status: projectStatusOptions[v.statusIdx],
	}
	return func() tea.Msg {
		page, err := v.client.ListProjects(context.Background(), q)
		if err != nil {
			return err
		}
		return projectsLoadedMsg{seq: seq, page: page}
	}
}

// resetAndLoad returns to the first page after any filter change.
func (v *ProjectsView) resetAndLoad() tea.Cmd {
	v.page = 1
	v.cursor = 0
	return v.load()
}

func (v *ProjectsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		return v, nil

	case projectsLoadedMsg:
		if msg.seq != v.seq {
			return v, nil
		}
		v.loading = false
		v.loaded = true
		v.projects = msg.page.Projects
		v.totalPages = max(msg.page.TotalPages, 1)
		v.page = clamp(v.page, 1, v.totalPages)
		if v.cursor >= len(v.projects) {
			v.cursor = max(0, len(v.projects)-1)
		}
		return v, nil

	case reloadMsg:
		// Mutations never patch local state; refetch the authoritative list
		return v, v.load()

	case error:
		v.loading = false
		v.loaded = true
		v.errMsg = api.Message(msg, "could not load projects")
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		if v.searching {
			return v.updateSearching(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *ProjectsView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back):
		return v, func() tea.Msg { return GoTo{Screen: ScreenDashboard} }

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.projects)-1 {
			v.cursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Left):
		// Clamp at the first page
		if v.page > 1 {
			v.page--
			v.cursor = 0
			return v, v.load()
		}
		return v, nil

	case key.Matches(msg, v.keys.Right):
		// Clamp at the last page
		if v.page < v.totalPages {
			v.page++
			v.cursor = 0
			return v, v.load()
		}
		return v, nil

	case key.Matches(msg, v.keys.Search):
		v.searching = true
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.statusIdx = (v.statusIdx + 1) % len(projectStatusOptions)
		return v, v.resetAndLoad()

	case key.Matches(msg, v.keys.Reload):
		return v, v.load()

	case key.Matches(msg, v.keys.New):
		v.startCreate()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if len(v.projects) > 0 {
			v.startEdit(v.projects[v.cursor])
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if len(v.projects) > 0 {
			v.confirmingDelete = true
			v.deleteTarget = v.projects[v.cursor]
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if len(v.projects) > 0 {
			project := v.projects[v.cursor]
			return v, func() tea.Msg { return OpenProject{Project: project} }
		}
		return v, nil

	case msg.String() == "t":
		return v, func() tea.Msg { return GoTo{Screen: ScreenTasks} }
	}

	return v, nil
}

func (v *ProjectsView) updateSearching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.searching = false
		v.searchInput.Blur()
		v.searchInput.Reset()
		return v, v.resetAndLoad()

	case key.Matches(msg, v.keys.Enter):
		v.searching = false
		v.searchInput.Blur()
		return v, v.resetAndLoad()
	}

	var cmd tea.Cmd
	v.searchInput, cmd = v.searchInput.Update(msg)
	return v, cmd
}

func (v *ProjectsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := models.FormatID(v.deleteTarget.ID)
		return v, func() tea.Msg {
			if _, err := v.client.DeleteProject(context.Background(), id); err != nil {
				return err
			}
			return reloadMsg{}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// reloadMsg asks the issuing view to refetch its current list after a
// successful mutation.
type reloadMsg struct{}

func (v *ProjectsView) startCreate() {
	v.editing = true
	v.editingProject = nil
	v.focusIdx = 0
	v.formState = 0
	v.formName.Reset()
	v.formDesc.Reset()
	v.formName.Focus()
	v.formDesc.Blur()
}

func (v *ProjectsView) startEdit(p models.Project) {
	v.editing = true
	proj := p
	v.editingProject = &proj
	v.focusIdx = 0
	v.formName.SetValue(p.Name)
	if p.Description != nil {
		v.formDesc.SetValue(*p.Description)
	} else {
		v.formDesc.Reset()
	}
	v.formState = 0
	for i, s := range projectStatusOptions {
		if s == p.Status {
			v.formState = i
		}
	}
	v.formName.Focus()
	v.formDesc.Blur()
}

func (v *ProjectsView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.save()

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFormFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFormFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx == 3 {
			return v, v.save()
		}
		if v.focusIdx == 2 {
			v.formState = (v.formState + 1) % len(projectStatusOptions)
			return v, nil
		}
		v.focusIdx++
		v.updateFormFocus()
		return v, nil

	case msg.String() == " ":
		if v.focusIdx == 2 {
			v.formState = (v.formState + 1) % len(projectStatusOptions)
			return v, nil
		}
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.formName, cmd = v.formName.Update(msg)
	case 1:
		v.formDesc, cmd = v.formDesc.Update(msg)
	}
	return v, cmd
}

func (v *ProjectsView) updateFormFocus() {
	v.formName.Blur()
	v.formDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.formName.Focus()
	case 1:
		v.formDesc.Focus()
	}
}

func (v *ProjectsView) save() tea.Cmd {
	name := strings.TrimSpace(v.formName.Value())
	if name == "" {
		return nil
	}
	desc := strings.TrimSpace(v.formDesc.Value())
	status := projectStatusOptions[v.formState]
	v.editing = false

	if v.editingProject == nil {
		in := api.CreateProjectInput{Name: name}
		if desc != "" {
			in.Description = &desc
		}
		if status != "" {
			in.Status = &status
		}
		return func() tea.Msg {
			if _, err := v.client.CreateProject(context.Background(), in); err != nil {
				return err
			}
			return reloadMsg{}
		}
	}

	// Partial update: send only the fields that changed
	orig := *v.editingProject
	in := api.UpdateProjectInput{}
	if name != orig.Name {
		in.Name = &name
	}
	origDesc := ""
	if orig.Description != nil {
		origDesc = *orig.Description
	}
	if desc != origDesc {
		in.Description = &desc
	}
	if status != "" && status != orig.Status {
		in.Status = &status
	}

	id := models.FormatID(orig.ID)
	return func() tea.Msg {
		if _, err := v.client.UpdateProject(context.Background(), id, in); err != nil {
			return err
		}
		return reloadMsg{}
	}
}

// View renders the view
func (v *ProjectsView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.editing {
		return v.renderForm()
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	header := s.Title.Render("Projects")
	filter := "all"
	if projectStatusOptions[v.statusIdx] != "" {
		filter = string(projectStatusOptions[v.statusIdx])
	}
	header += s.TitleMuted.Render("  status: " + filter)

	var rows []string
	rows = append(rows, header, "")

	if v.searching || strings.TrimSpace(v.searchInput.Value()) != "" {
		rows = append(rows, s.Panel.Render(v.searchInput.View()), "")
	}

	switch {
	case !v.loaded || v.loading:
		rows = append(rows, s.TitleMuted.Render("Loading..."))
	case v.errMsg != "":
		rows = append(rows, s.ErrorBanner.Render(v.errMsg))
	case len(v.projects) == 0:
		rows = append(rows, s.TitleMuted.Render("No projects. Press 'n' to create one."))
	default:
		width := max(contentWidth-4, 20)
		for i, p := range v.projects {
			badge := s.Badge.Foreground(styles.ProjectStatusColor(p.Status)).Render(string(p.Status))
			line := p.Name + " " + badge
			desc := ""
			if p.Description != nil {
				desc = *p.Description
			}
			if i == v.cursor {
				rows = append(rows, s.ListSelected.Width(width).Render(line))
			} else {
				rows = append(rows, s.ListItem.Width(width).Render(line))
			}
			if desc != "" {
				rows = append(rows, s.ListItem.Foreground(styles.Current.ForegroundDim).Width(width).Render(desc))
			}
		}
		rows = append(rows, "", s.StatusBar.Render(fmt.Sprintf("page %d/%d", v.page, v.totalPages)))
	}

	rows = append(rows, v.renderHelp())
	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.CenterView(content, v.width, v.height)
}

func (v *ProjectsView) renderHelp() string {
	s := v.styles
	return s.Help.Render(
		fmt.Sprintf("%s open • %s new • %s edit • %s del • %s search • %s filter • %s/%s page • %s back",
			s.HelpKey.Render("↵"),
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("/"),
			s.HelpKey.Render("f"),
			s.HelpKey.Render("←"),
			s.HelpKey.Render("→"),
			s.HelpKey.Render("esc"),
		),
	)
}

func (v *ProjectsView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	title := "New Project"
	if v.editingProject != nil {
		title = "Edit Project"
	}

	nameStyle, descStyle := s.Input, s.Input
	statusStyle := s.Button
	btnStyle := s.Button
	switch v.focusIdx {
	case 0:
		nameStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		statusStyle = s.ButtonFocused
	case 3:
		btnStyle = s.ButtonFocused
	}

	statusLabel := "(unchanged)"
	if projectStatusOptions[v.formState] != "" {
		statusLabel = string(projectStatusOptions[v.formState])
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render(title),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.formName.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.formDesc.View()),
		"",
		"Status: "+statusStyle.Render(statusLabel),
		"",
		btnStyle.Render(" Save "),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *ProjectsView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" and its tasks will be removed.", v.deleteTarget.Name)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
