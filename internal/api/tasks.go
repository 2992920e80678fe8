package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jpalma/trak/internal/models"
)

// TaskQuery selects a page of tasks. Identifier filters use the UI's string
// form and are coerced to the server's numeric form on the wire.
type TaskQuery struct {
	ProjectID  string               // "" = all projects
	Status     models.TaskStatus    // "" = all
	Priority   models.TaskPriority  // "" = all
	AssignedTo string               // "" = anyone
	Page       int
	Limit      int
}

// TaskPage is the server's list envelope for tasks.
type TaskPage struct {
	Tasks       []models.Task `json:"tasks"`
	TotalPages  int           `json:"total_pages"`
	CurrentPage int           `json:"current_page"`
}

// ListTasks fetches one page of tasks. The assignee filter is also
// re-applied locally: the server's matching has been unreliable for it, so
// the exact match is enforced on the result as well.
func (c *Client) ListTasks(ctx context.Context, q TaskQuery) (*TaskPage, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, &RequestError{Field: "status", Reason: "is not a task status"}
	}
	if q.Priority != "" && !q.Priority.Valid() {
		return nil, &RequestError{Field: "priority", Reason: "is not a task priority"}
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(q.Limit))
	if q.ProjectID != "" {
		pid, err := models.ParseID(q.ProjectID)
		if err != nil {
			return nil, &RequestError{Field: "projectId", Reason: "must be numeric"}
		}
		query.Set("project_id", models.FormatID(pid))
	}
	if q.Status != "" {
		query.Set("status", string(q.Status))
	}
	if q.Priority != "" {
		query.Set("priority", string(q.Priority))
	}
	if q.AssignedTo != "" {
		if _, err := models.ParseID(q.AssignedTo); err != nil {
			return nil, &RequestError{Field: "assignedTo", Reason: "must be numeric"}
		}
		query.Set("assignedTo", q.AssignedTo)
	}

	var out TaskPage
	if err := c.do(ctx, http.MethodGet, "/tasks", query, nil, &out); err != nil {
		return nil, err
	}

	if q.AssignedTo != "" {
		assignee, _ := models.ParseID(q.AssignedTo)
		filtered := out.Tasks[:0]
		for _, t := range out.Tasks {
			if t.AssignedTo != nil && *t.AssignedTo == assignee {
				filtered = append(filtered, t)
			}
		}
		out.Tasks = filtered
	}

	return &out, nil
}

// GetTask fetches one task.
func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	tid, err := models.ParseID(id)
	if err != nil {
		return nil, &RequestError{Field: "id", Reason: "must be numeric"}
	}

	var out models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+models.FormatID(tid), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTaskInput holds the fields for task creation. Title, ProjectID and
// Priority are required; nil optionals are omitted from the payload.
type CreateTaskInput struct {
	Title       string
	ProjectID   string
	Priority    models.TaskPriority
	Description *string
	DueDate     *string
	AssignedTo  *string
}

// CreateTask creates a task. Field names are translated to the server's
// convention: projectId -> project_id (numeric), dueDate -> due_date,
// assignedTo -> assigned_to (numeric).
func (c *Client) CreateTask(ctx context.Context, in CreateTaskInput) (*models.Task, error) {
	if in.Title == "" {
		return nil, &RequestError{Field: "title", Reason: "is required"}
	}
	if in.ProjectID == "" {
		return nil, &RequestError{Field: "projectId", Reason: "is required"}
	}
	pid, err := models.ParseID(in.ProjectID)
	if err != nil {
		return nil, &RequestError{Field: "projectId", Reason: "must be numeric"}
	}
	if !in.Priority.Valid() {
		return nil, &RequestError{Field: "priority", Reason: "is not a task priority"}
	}

	payload := map[string]any{
		"title":      in.Title,
		"project_id": pid,
		"priority":   in.Priority,
	}
	if in.Description != nil {
		payload["description"] = *in.Description
	}
	if in.DueDate != nil {
		payload["due_date"] = *in.DueDate
	}
	if in.AssignedTo != nil {
		aid, err := models.ParseID(*in.AssignedTo)
		if err != nil {
			return nil, &RequestError{Field: "assignedTo", Reason: "must be numeric"}
		}
		payload["assigned_to"] = aid
	}

	var out models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTaskInput is a partial update: only non-nil fields are sent.
// ClearAssignee sends an explicit null to unassign the task; it takes
// precedence over AssignedTo.
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *string
	AssignedTo    *string
	ClearAssignee bool
}

// UpdateTask applies a partial update to a task. The project reference is
// immutable after creation and is never part of the payload.
func (c *Client) UpdateTask(ctx context.Context, id string, in UpdateTaskInput) (*models.Task, error) {
	tid, err := models.ParseID(id)
	if err != nil {
		return nil, &RequestError{Field: "id", Reason: "must be numeric"}
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, &RequestError{Field: "status", Reason: "is not a task status"}
	}
	if in.Priority != nil && !in.Priority.Valid() {
		return nil, &RequestError{Field: "priority", Reason: "is not a task priority"}
	}

	payload := map[string]any{}
	if in.Title != nil {
		payload["title"] = *in.Title
	}
	if in.Description != nil {
		payload["description"] = *in.Description
	}
	if in.Status != nil {
		payload["status"] = *in.Status
	}
	if in.Priority != nil {
		payload["priority"] = *in.Priority
	}
	if in.DueDate != nil {
		payload["due_date"] = *in.DueDate
	}
	switch {
	case in.ClearAssignee:
		payload["assigned_to"] = nil
	case in.AssignedTo != nil:
		aid, err := models.ParseID(*in.AssignedTo)
		if err != nil {
			return nil, &RequestError{Field: "assignedTo", Reason: "must be numeric"}
		}
		payload["assigned_to"] = aid
	}

	var out models.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+models.FormatID(tid), nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type statusRequest struct {
	Status models.TaskStatus `json:"status"`
}

// UpdateTaskStatus changes only the status via the dedicated endpoint.
func (c *Client) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) (*models.Task, error) {
	tid, err := models.ParseID(id)
	if err != nil {
		return nil, &RequestError{Field: "id", Reason: "must be numeric"}
	}
	if !status.Valid() {
		return nil, &RequestError{Field: "status", Reason: "is not a task status"}
	}

	var out models.Task
	err = c.do(ctx, http.MethodPatch, "/tasks/"+models.FormatID(tid)+"/status", nil, statusRequest{Status: status}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask deletes a task and returns the server's confirmation.
func (c *Client) DeleteTask(ctx context.Context, id string) (string, error) {
	tid, err := models.ParseID(id)
	if err != nil {
		return "", &RequestError{Field: "id", Reason: "must be numeric"}
	}

	var out messageResponse
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+models.FormatID(tid), nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
