package views

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jpalma/trak/internal/api"
	"github.com/jpalma/trak/internal/models"
)

type fakeSession struct{ token string }

func (f *fakeSession) Token() string { return f.token }
func (f *fakeSession) Save(token string, user *models.User) error {
	f.token = token
	return nil
}
func (f *fakeSession) Clear() error { f.token = ""; return nil }

// listRecorder serves a canned project list and records the query string of
// every list request.
type listRecorder struct {
	mu      sync.Mutex
	queries []url.Values
	reply   any
}

func (r *listRecorder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mu.Lock()
	r.queries = append(r.queries, req.URL.Query())
	r.mu.Unlock()
	json.NewEncoder(w).Encode(r.reply)
}

func (r *listRecorder) last(t *testing.T) url.Values {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.queries) == 0 {
		t.Fatal("no requests recorded")
	}
	return r.queries[len(r.queries)-1]
}

func newViewClient(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return api.New(srv.URL, &fakeSession{token: "tok"}, nil)
}

// drive executes a command and feeds the resulting message back into the
// view, like the runtime would.
func drive(t *testing.T, v tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	v, _ = v.Update(cmd())
	return v
}

// press sends a key, requires it to produce a command, and feeds the
// command's message back into the view.
func press(t *testing.T, v tea.Model, msg tea.KeyMsg) tea.Model {
	t.Helper()
	v, cmd := v.Update(msg)
	return drive(t, v, cmd)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestProjectsFilterChangeResetsPage(t *testing.T) {
	rec := &listRecorder{reply: api.ProjectPage{
		Projects:    []models.Project{{ID: 1, Name: "one"}},
		TotalPages:  3,
		CurrentPage: 1,
	}}
	client := newViewClient(t, rec)

	v := NewProjectsView(client, 10)
	var m tea.Model = drive(t, v, v.Init())

	// Advance to page 2
	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := rec.last(t).Get("page"); got != "2" {
		t.Fatalf("page after paging forward = %s, want 2", got)
	}

	// Cycling the status filter must return to page 1
	m = press(t, m, keyRune('f'))
	q := rec.last(t)
	if got := q.Get("page"); got != "1" {
		t.Errorf("page after filter change = %s, want 1", got)
	}
	if got := q.Get("status"); got != string(models.ProjectActive) {
		t.Errorf("status filter = %q, want %q", got, models.ProjectActive)
	}
	if m.(*ProjectsView).page != 1 {
		t.Errorf("view page = %d, want 1", m.(*ProjectsView).page)
	}
}

func TestProjectsSearchPreservedAcrossPageChange(t *testing.T) {
	rec := &listRecorder{reply: api.ProjectPage{
		Projects:    []models.Project{{ID: 1, Name: "one"}},
		TotalPages:  2,
		CurrentPage: 1,
	}}
	client := newViewClient(t, rec)

	v := NewProjectsView(client, 10)
	var m tea.Model = drive(t, v, v.Init())

	pv := m.(*ProjectsView)
	pv.searchInput.SetValue("alpha")
	m = drive(t, pv, pv.resetAndLoad())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	q := rec.last(t)
	if got := q.Get("search"); got != "alpha" {
		t.Errorf("search after page change = %q, want alpha", got)
	}
	if got := q.Get("page"); got != "2" {
		t.Errorf("page = %s, want 2", got)
	}
}

func TestProjectsStaleResponseDiscarded(t *testing.T) {
	client := newViewClient(t, http.NotFoundHandler())

	v := NewProjectsView(client, 10)
	v.seq = 5
	v.projects = []models.Project{{ID: 1, Name: "current"}}

	stale := projectsLoadedMsg{seq: 4, page: &api.ProjectPage{
		Projects:   []models.Project{{ID: 9, Name: "stale"}},
		TotalPages: 9,
	}}
	m, _ := v.Update(stale)

	pv := m.(*ProjectsView)
	if len(pv.projects) != 1 || pv.projects[0].Name != "current" {
		t.Errorf("stale response overwrote state: %+v", pv.projects)
	}
}

func TestProjectsPageClampedToShrunkenResult(t *testing.T) {
	client := newViewClient(t, http.NotFoundHandler())

	v := NewProjectsView(client, 10)
	v.seq = 1
	v.page = 5

	m, _ := v.Update(projectsLoadedMsg{seq: 1, page: &api.ProjectPage{
		Projects:   nil,
		TotalPages: 2,
	}})

	pv := m.(*ProjectsView)
	if pv.page != 2 {
		t.Errorf("page = %d, want clamped to 2", pv.page)
	}
}

func TestProjectsEditSendsOnlyChangedFields(t *testing.T) {
	desc := "old description"
	project := models.Project{ID: 7, Name: "alpha", Description: &desc, Status: models.ProjectActive}

	var (
		mu     sync.Mutex
		bodies []map[string]any
	)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ProjectPage{
			Projects:    []models.Project{project},
			TotalPages:  1,
			CurrentPage: 1,
		})
	})
	mux.HandleFunc("PUT /projects/7", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		bodies = append(bodies, body)
		mu.Unlock()
		json.NewEncoder(w).Encode(project)
	})
	client := newViewClient(t, mux)

	v := NewProjectsView(client, 10)
	drive(t, v, v.Init())

	// Saving without touching anything must produce an empty payload
	v.startEdit(v.projects[0])
	m := drive(t, v, v.save())
	v = m.(*ProjectsView)

	mu.Lock()
	first := bodies[0]
	mu.Unlock()
	for _, key := range []string{"name", "description", "status"} {
		if _, ok := first[key]; ok {
			t.Errorf("unchanged field %q sent in update payload: %v", key, first)
		}
	}

	// Changing only the name must send the name and nothing else
	v.startEdit(v.projects[0])
	v.formName.SetValue("beta")
	drive(t, v, v.save())

	mu.Lock()
	second := bodies[1]
	mu.Unlock()
	if got := second["name"]; got != "beta" {
		t.Errorf("name = %v, want beta", got)
	}
	for _, key := range []string{"description", "status"} {
		if _, ok := second[key]; ok {
			t.Errorf("unchanged field %q sent in update payload: %v", key, second)
		}
	}
}

func TestTasksFilterChangeResetsPage(t *testing.T) {
	rec := &listRecorder{reply: api.TaskPage{
		Tasks:       []models.Task{{ID: 1, Title: "t", Status: models.TaskTodo, Priority: models.PriorityLow}},
		TotalPages:  4,
		CurrentPage: 1,
	}}
	mux := http.NewServeMux()
	mux.Handle("GET /tasks", rec)
	mux.HandleFunc("GET /projects", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(api.ProjectPage{TotalPages: 1, CurrentPage: 1})
	})
	mux.HandleFunc("GET /team/members", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"members": []models.TeamMember{}})
	})
	client := newViewClient(t, mux)

	v := NewTasksView(client, 10)
	var m tea.Model = drive(t, v, v.load())

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if got := rec.last(t).Get("page"); got != "2" {
		t.Fatalf("page after paging forward = %s, want 2", got)
	}

	m = press(t, m, keyRune('f'))
	q := rec.last(t)
	if got := q.Get("page"); got != "1" {
		t.Errorf("page after status filter change = %s, want 1", got)
	}
	if got := q.Get("status"); got != string(models.TaskTodo) {
		t.Errorf("status filter = %q, want %q", got, models.TaskTodo)
	}

	m = press(t, m, keyRune('o'))
	q = rec.last(t)
	if got := q.Get("page"); got != "1" {
		t.Errorf("page after priority filter change = %s, want 1", got)
	}
	if got := q.Get("priority"); got != string(models.PriorityLow) {
		t.Errorf("priority filter = %q, want %q", got, models.PriorityLow)
	}
}

func TestTasksStaleResponseDiscarded(t *testing.T) {
	client := newViewClient(t, http.NotFoundHandler())

	v := NewTasksView(client, 10)
	v.seq = 3
	v.tasks = []models.Task{{ID: 1, Title: "current"}}

	m, _ := v.Update(tasksLoadedMsg{seq: 2, page: &api.TaskPage{
		Tasks:      []models.Task{{ID: 9, Title: "stale"}},
		TotalPages: 9,
	}})

	tv := m.(*TasksView)
	if len(tv.tasks) != 1 || tv.tasks[0].Title != "current" {
		t.Errorf("stale response overwrote state: %+v", tv.tasks)
	}
}
