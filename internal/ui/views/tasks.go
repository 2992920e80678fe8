package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/jpalma/trak/internal/api"
	"github.com/jpalma/trak/internal/models"
	"github.com/jpalma/trak/internal/ui/keys"
	"github.com/jpalma/trak/internal/ui/styles"
)

// lookupLimit covers the project dropdown; projects beyond it are not
// selectable from the task form.
const lookupLimit = 100

// taskStatusOptions / taskPriorityOptions are the filter cycles; index 0
// means no filter.
var (
	taskStatusOptions   = append([]models.TaskStatus{""}, models.TaskStatuses()...)
	taskPriorityOptions = append([]models.TaskPriority{""}, models.TaskPriorities()...)
)

// TasksView is the cross-project task list with filters and the task form.
type TasksView struct {
	client   *api.Client
	pageSize int
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	tasks      []models.Task
	page       int
	totalPages int
	cursor     int

	// Filter state. Project/assignee filters index into the loaded lookup
	// slices; 0 means no filter.
	statusIdx   int
	priorityIdx int
	projectIdx  int
	assigneeIdx int

	// Lookup data for dropdowns
	projects []models.Project
	members  []models.TeamMember

	seq     int
	loading bool
	loaded  bool
	errMsg  string

	// Task form
	editing      bool
	editingTask  *models.Task // nil when creating
	formTitle    textinput.Model
	formDesc     textarea.Model
	formDue      textinput.Model
	formProject  int // index into projects; create only
	formPriority int // index into models.TaskPriorities()
	formStatus   int // index into models.TaskStatuses(); edit only
	formAssignee int // 0 = unassigned, else index-1 into members
	formFocus    int
	formErr      string

	// Delete confirmation
	confirmingDelete bool
	deleteTarget     models.Task
}

// NewTasksView creates the task list screen
func NewTasksView(client *api.Client, pageSize int) *TasksView {
	formTitle := textinput.New()
	formTitle.Placeholder = "Task title"
	formTitle.CharLimit = 200

	formDesc := textarea.New()
	formDesc.Placeholder = "Description"
	formDesc.CharLimit = 1000
	formDesc.SetWidth(50)
	formDesc.SetHeight(3)
	formDesc.ShowLineNumbers = false

	formDue := textinput.New()
	formDue.Placeholder = "2025-12-31"
	formDue.CharLimit = 10

	return &TasksView{
		client:     client,
		pageSize:   pageSize,
		styles:     styles.NewStyles(),
		keys:       keys.DefaultKeyMap(),
		page:       1,
		totalPages: 1,
		formTitle:  formTitle,
		formDesc:   formDesc,
		formDue:    formDue,
	}
}

type tasksLoadedMsg struct {
	seq  int
	page *api.TaskPage
}

type lookupsLoadedMsg struct {
	projects []models.Project
	members  []models.TeamMember
}

func (v *TasksView) Init() tea.Cmd {
	return tea.Batch(v.loadLookups, v.load())
}

// loadLookups fetches the project and member dropdowns concurrently. Either
// failing fails the whole batch.
func (v *TasksView) loadLookups() tea.Msg {
	var (
		projects *api.ProjectPage
		members  []models.TeamMember
	)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() (err error) {
		projects, err = v.client.ListProjects(ctx, api.ProjectQuery{Page: 1, Limit: lookupLimit})
		return err
	})
	g.Go(func() (err error) {
		members, err = v.client.TeamMembers(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	return lookupsLoadedMsg{projects: projects.Projects, members: members}
}

func (v *TasksView) query() api.TaskQuery {
	q := api.TaskQuery{
		Status:   taskStatusOptions[v.statusIdx],
		Priority: taskPriorityOptions[v.priorityIdx],
		Page:     v.page,
		Limit:    v.pageSize,
	}
	if v.projectIdx > 0 && v.projectIdx <= len(v.projects) {
		q.ProjectID = models.FormatID(v.projects[v.projectIdx-1].ID)
	}
	if v.assigneeIdx > 0 && v.assigneeIdx <= len(v.members) {
		q.AssignedTo = models.FormatID(v.members[v.assigneeIdx-1].ID)
	}
	return q
}

func (v *TasksView) load() tea.Cmd {
	v.seq++
	v.loading = true
	v.errMsg = ""
	seq := v.seq
	q := v.query()
	return func() tea.Msg {
		page, err := v.client.ListTasks(context.Background(), q)
		if err != nil {
			return err
		}
		return tasksLoadedMsg{seq: seq, page: page}
	}
}

// resetAndLoad returns to the first page after any filter change.
func (v *TasksView) resetAndLoad() tea.Cmd {
	v.page = 1
	v.cursor = 0
	return v.load()
}

func (v *TasksView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.formDesc.SetWidth(clamp(contentWidth-10, 20, 50))
		return v, nil

	case tasksLoadedMsg:
		if msg.seq != v.seq {
			// A newer load is in flight; drop the stale result
			return v, nil
		}
		v.loading = false
		v.loaded = true
		v.tasks = msg.page.Tasks
		v.totalPages = max(msg.page.TotalPages, 1)
		v.page = clamp(v.page, 1, v.totalPages)
		if v.cursor >= len(v.tasks) {
			v.cursor = max(0, len(v.tasks)-1)
		}
		return v, nil

	case lookupsLoadedMsg:
		v.projects = msg.projects
		v.members = msg.members
		return v, nil

	case reloadMsg:
		return v, v.load()

	case error:
		v.loading = false
		v.loaded = true
		v.errMsg = api.Message(msg, "could not load tasks")
		return v, nil

	case tea.KeyMsg:
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TasksView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
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
		if v.cursor < len(v.tasks)-1 {
			v.cursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Left):
		if v.page > 1 {
			v.page--
			v.cursor = 0
			return v, v.load()
		}
		return v, nil

	case key.Matches(msg, v.keys.Right):
		if v.page < v.totalPages {
			v.page++
			v.cursor = 0
			return v, v.load()
		}
		return v, nil

	case key.Matches(msg, v.keys.Filter):
		v.statusIdx = (v.statusIdx + 1) % len(taskStatusOptions)
		return v, v.resetAndLoad()

	case msg.String() == "o":
		v.priorityIdx = (v.priorityIdx + 1) % len(taskPriorityOptions)
		return v, v.resetAndLoad()

	case msg.String() == "g":
		v.projectIdx = (v.projectIdx + 1) % (len(v.projects) + 1)
		return v, v.resetAndLoad()

	case msg.String() == "a":
		v.assigneeIdx = (v.assigneeIdx + 1) % (len(v.members) + 1)
		return v, v.resetAndLoad()

	case msg.String() == "c":
		v.statusIdx, v.priorityIdx, v.projectIdx, v.assigneeIdx = 0, 0, 0, 0
		return v, v.resetAndLoad()

	case key.Matches(msg, v.keys.Reload):
		return v, v.load()

	case msg.String() == "x":
		// Mark the selected task completed via the narrow status endpoint
		if len(v.tasks) > 0 && v.tasks[v.cursor].Status != models.TaskCompleted {
			return v, v.changeStatus(v.tasks[v.cursor], models.TaskCompleted)
		}
		return v, nil

	case msg.String() == "b":
		// Begin: TODO -> IN_PROGRESS
		if len(v.tasks) > 0 && v.tasks[v.cursor].Status == models.TaskTodo {
			return v, v.changeStatus(v.tasks[v.cursor], models.TaskInProgress)
		}
		return v, nil

	case key.Matches(msg, v.keys.New):
		v.startCreate()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Edit):
		if len(v.tasks) > 0 {
			v.startEdit(v.tasks[v.cursor])
			return v, textinput.Blink
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if len(v.tasks) > 0 {
			v.confirmingDelete = true
			v.deleteTarget = v.tasks[v.cursor]
		}
		return v, nil

	case msg.String() == "p":
		return v, func() tea.Msg { return GoTo{Screen: ScreenProjects} }
	}

	return v, nil
}

func (v *TasksView) changeStatus(task models.Task, status models.TaskStatus) tea.Cmd {
	id := models.FormatID(task.ID)
	return func() tea.Msg {
		if _, err := v.client.UpdateTaskStatus(context.Background(), id, status); err != nil {
			return err
		}
		return reloadMsg{}
	}
}

func (v *TasksView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		id := models.FormatID(v.deleteTarget.ID)
		return v, func() tea.Msg {
			if _, err := v.client.DeleteTask(context.Background(), id); err != nil {
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

func (v *TasksView) startCreate() {
	v.editing = true
	v.editingTask = nil
	v.formFocus = 0
	v.formErr = ""
	v.formTitle.Reset()
	v.formDesc.Reset()
	v.formDue.Reset()
	v.formProject = 0
	// Preselect the active project filter, if any
	if v.projectIdx > 0 {
		v.formProject = v.projectIdx - 1
	}
	v.formPriority = 1 // MEDIUM
	v.formStatus = 0
	v.formAssignee = 0
	v.updateFormFocus()
}

func (v *TasksView) startEdit(task models.Task) {
	v.editing = true
	t := task
	v.editingTask = &t
	v.formFocus = 0
	v.formErr = ""
	v.formTitle.SetValue(task.Title)
	if task.Description != nil {
		v.formDesc.SetValue(*task.Description)
	} else {
		v.formDesc.Reset()
	}
	if task.DueDate != nil {
		v.formDue.SetValue(*task.DueDate)
	} else {
		v.formDue.Reset()
	}
	v.formPriority = 0
	for i, p := range models.TaskPriorities() {
		if p == task.Priority {
			v.formPriority = i
		}
	}
	v.formStatus = 0
	for i, s := range models.TaskStatuses() {
		if s == task.Status {
			v.formStatus = i
		}
	}
	v.formAssignee = 0
	if task.AssignedTo != nil {
		for i, m := range v.members {
			if m.ID == *task.AssignedTo {
				v.formAssignee = i + 1
			}
		}
	}
	v.updateFormFocus()
}

// Form focus slots: 0=title, 1=desc, 2=project(create)/status(edit),
// 3=priority, 4=assignee, 5=due date, 6=save.
const formSlots = 7

func (v *TasksView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case msg.String() == "ctrl+s":
		return v, v.save()

	case key.Matches(msg, v.keys.Tab):
		v.formFocus = (v.formFocus + 1) % formSlots
		v.updateFormFocus()
		return v, nil

	case msg.String() == "shift+tab":
		v.formFocus = (v.formFocus + formSlots - 1) % formSlots
		v.updateFormFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter), msg.String() == " ":
		switch v.formFocus {
		case 2:
			if v.editingTask == nil {
				// Project selection, create only
				if len(v.projects) > 0 {
					v.formProject = (v.formProject + 1) % len(v.projects)
				}
			} else {
				v.formStatus = (v.formStatus + 1) % len(models.TaskStatuses())
			}
			return v, nil
		case 3:
			v.formPriority = (v.formPriority + 1) % len(models.TaskPriorities())
			return v, nil
		case 4:
			v.formAssignee = (v.formAssignee + 1) % (len(v.members) + 1)
			return v, nil
		case 6:
			if key.Matches(msg, v.keys.Enter) {
				return v, v.save()
			}
			return v, nil
		default:
			if key.Matches(msg, v.keys.Enter) && v.formFocus != 1 {
				v.formFocus++
				v.updateFormFocus()
				return v, nil
			}
			// Let enter/space pass through to the description textarea
		}
	}

	var cmd tea.Cmd
	switch v.formFocus {
	case 0:
		v.formTitle, cmd = v.formTitle.Update(msg)
	case 1:
		v.formDesc, cmd = v.formDesc.Update(msg)
	case 5:
		v.formDue, cmd = v.formDue.Update(msg)
	}
	return v, cmd
}

func (v *TasksView) updateFormFocus() {
	v.formTitle.Blur()
	v.formDesc.Blur()
	v.formDue.Blur()
	switch v.formFocus {
	case 0:
		v.formTitle.Focus()
	case 1:
		v.formDesc.Focus()
	case 5:
		v.formDue.Focus()
	}
}

func (v *TasksView) save() tea.Cmd {
	title := strings.TrimSpace(v.formTitle.Value())
	if title == "" {
		v.formErr = "title is required"
		return nil
	}
	if v.editingTask == nil && len(v.projects) == 0 {
		v.formErr = "no project to assign the task to"
		return nil
	}

	desc := strings.TrimSpace(v.formDesc.Value())
	due := strings.TrimSpace(v.formDue.Value())
	if due != "" {
		if _, err := models.ParseDate(due); err != nil {
			v.formErr = "due date must be yyyy-mm-dd"
			return nil
		}
	}
	priority := models.TaskPriorities()[v.formPriority]

	var assignee string
	if v.formAssignee > 0 && v.formAssignee <= len(v.members) {
		assignee = models.FormatID(v.members[v.formAssignee-1].ID)
	}

	v.editing = false
	v.formErr = ""

	if v.editingTask == nil {
		in := api.CreateTaskInput{
			Title:     title,
			ProjectID: models.FormatID(v.projects[v.formProject].ID),
			Priority:  priority,
		}
		if desc != "" {
			in.Description = &desc
		}
		if due != "" {
			in.DueDate = &due
		}
		if assignee != "" {
			in.AssignedTo = &assignee
		}
		return func() tea.Msg {
			if _, err := v.client.CreateTask(context.Background(), in); err != nil {
				return err
			}
			return reloadMsg{}
		}
	}

	// Partial update: send only the fields that changed
	orig := *v.editingTask
	in := api.UpdateTaskInput{}
	if title != orig.Title {
		in.Title = &title
	}
	origDesc := ""
	if orig.Description != nil {
		origDesc = *orig.Description
	}
	if desc != origDesc {
		in.Description = &desc
	}
	status := models.TaskStatuses()[v.formStatus]
	if status != orig.Status {
		in.Status = &status
	}
	if priority != orig.Priority {
		in.Priority = &priority
	}
	origDue := ""
	if orig.DueDate != nil {
		origDue = *orig.DueDate
	}
	// An emptied due date is omitted, not cleared; only the assignee
	// supports explicit clearing on this API.
	if due != origDue && due != "" {
		in.DueDate = &due
	}
	origAssignee := ""
	if orig.AssignedTo != nil {
		origAssignee = models.FormatID(*orig.AssignedTo)
	}
	if assignee != origAssignee {
		if assignee == "" {
			in.ClearAssignee = true
		} else {
			in.AssignedTo = &assignee
		}
	}

	id := models.FormatID(orig.ID)
	return func() tea.Msg {
		if _, err := v.client.UpdateTask(context.Background(), id, in); err != nil {
			return err
		}
		return reloadMsg{}
	}
}

// View renders the view
func (v *TasksView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}
	if v.editing {
		return v.renderForm()
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var rows []string
	rows = append(rows, s.Title.Render("Tasks"), "", v.renderFilterBar(), "")

	switch {
	case !v.loaded || v.loading:
		rows = append(rows, s.TitleMuted.Render("Loading..."))
	case v.errMsg != "":
		rows = append(rows, s.ErrorBanner.Render(v.errMsg))
	case len(v.tasks) == 0:
		rows = append(rows, s.TitleMuted.Render("No tasks match the current filters."))
	default:
		width := max(contentWidth-4, 20)
		for i, t := range v.tasks {
			rows = append(rows, v.renderTask(t, i == v.cursor, width))
		}
		rows = append(rows, "", s.StatusBar.Render(fmt.Sprintf("page %d/%d", v.page, v.totalPages)))
	}

	rows = append(rows, v.renderHelp())
	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return styles.CenterView(content, v.width, v.height)
}

func (v *TasksView) renderFilterBar() string {
	s := v.styles

	part := func(label string, val string) string {
		if val == "" {
			val = "all"
		}
		return s.TitleMuted.Render(label+": ") + val
	}

	project := ""
	if v.projectIdx > 0 && v.projectIdx <= len(v.projects) {
		project = v.projects[v.projectIdx-1].Name
	}
	assignee := ""
	if v.assigneeIdx > 0 && v.assigneeIdx <= len(v.members) {
		assignee = v.members[v.assigneeIdx-1].Name
	}

	return s.Panel.Render(strings.Join([]string{
		part("status", string(taskStatusOptions[v.statusIdx])),
		part("priority", string(taskPriorityOptions[v.priorityIdx])),
		part("project", project),
		part("assignee", assignee),
	}, "  "))
}

func (v *TasksView) renderTask(t models.Task, selected bool, width int) string {
	s := v.styles

	statusBadge := s.Badge.Foreground(styles.TaskStatusColor(t.Status)).Render(string(t.Status))
	prioBadge := s.Badge.Foreground(styles.PriorityColor(t.Priority)).Render(string(t.Priority))

	extras := ""
	if t.Project != nil {
		extras += "  " + t.Project.Name
	}
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

func (v *TasksView) renderHelp() string {
	s := v.styles
	return s.Help.Render(
		fmt.Sprintf("%s new • %s edit • %s del • %s done • %s begin • %s status • %s prio • %s proj • %s assignee • %s clear • %s back",
			s.HelpKey.Render("n"),
			s.HelpKey.Render("e"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("x"),
			s.HelpKey.Render("b"),
			s.HelpKey.Render("f"),
			s.HelpKey.Render("o"),
			s.HelpKey.Render("g"),
			s.HelpKey.Render("a"),
			s.HelpKey.Render("c"),
			s.HelpKey.Render("esc"),
		),
	)
}

func (v *TasksView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	title := "New Task"
	if v.editingTask != nil {
		title = "Edit Task"
	}

	styleFor := func(slot int, base lipgloss.Style, focused lipgloss.Style) lipgloss.Style {
		if v.formFocus == slot {
			return focused
		}
		return base
	}

	projectLabel := "(none)"
	if len(v.projects) > 0 {
		projectLabel = v.projects[clamp(v.formProject, 0, len(v.projects)-1)].Name
	}
	assigneeLabel := "(unassigned)"
	if v.formAssignee > 0 && v.formAssignee <= len(v.members) {
		assigneeLabel = v.members[v.formAssignee-1].Name
	}

	rows := []string{
		s.Title.Render(title),
		"",
		"Title:",
		styleFor(0, s.Input, s.InputFocused).Width(inputWidth).Render(v.formTitle.View()),
		"",
		"Description:",
		styleFor(1, s.Input, s.InputFocused).Render(v.formDesc.View()),
		"",
	}

	if v.editingTask == nil {
		rows = append(rows, "Project: "+styleFor(2, s.Button, s.ButtonFocused).Render(projectLabel))
	} else {
		status := models.TaskStatuses()[v.formStatus]
		rows = append(rows, "Status: "+styleFor(2, s.Button, s.ButtonFocused).Render(string(status)))
	}

	priority := models.TaskPriorities()[v.formPriority]
	rows = append(rows,
		"Priority: "+styleFor(3, s.Button, s.ButtonFocused).Render(string(priority)),
		"Assignee: "+styleFor(4, s.Button, s.ButtonFocused).Render(assigneeLabel),
		"",
		"Due date:",
		styleFor(5, s.Input, s.InputFocused).Width(inputWidth).Render(v.formDue.View()),
		"",
		styleFor(6, s.Button, s.ButtonFocused).Render(" Save "),
	)

	if v.formErr != "" {
		rows = append(rows, "", s.ErrorBanner.Render(v.formErr))
	}
	rows = append(rows, "", s.TitleMuted.Render("Tab: next • Enter/Space: cycle • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TasksView) renderDeleteConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete Task?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("\"%s\" will be removed.", v.deleteTarget.Title)),
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
