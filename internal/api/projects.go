package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jpalma/trak/internal/models"
)

// ProjectQuery selects a page of projects.
type ProjectQuery struct {
	Page   int
	Limit  int
	Search string
	Status models.ProjectStatus // "" = all
}

// ProjectPage is the server's list envelope for projects.
type ProjectPage struct {
	Projects    []models.Project `json:"projects"`
	TotalPages  int              `json:"total_pages"`
	CurrentPage int              `json:"current_page"`
}

// ListProjects fetches one page of projects with the given filters.
func (c *Client) ListProjects(ctx context.Context, q ProjectQuery) (*ProjectPage, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, &RequestError{Field: "status", Reason: "is not a project status"}
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("limit", strconv.Itoa(q.Limit))
	if q.Search != "" {
		query.Set("search", q.Search)
	}
	if q.Status != "" {
		query.Set("status", string(q.Status))
	}

	var out ProjectPage
	if err := c.do(ctx, http.MethodGet, "/projects", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetProject fetches one project, including its embedded task list when the
// server returns one.
func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	pid, err := models.ParseID(id)
	if err != nil {
		return nil, &RequestError{Field: "id", Reason: "must be numeric"}
	}

	var out models.Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+models.FormatID(pid), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProjectInput holds the fields for project creation. Nil optionals
// are omitted from the payload.
type CreateProjectInput struct {
	Name        string
	Description *string
	Status      *models.ProjectStatus
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, in CreateProjectInput) (*models.Project, error) {
	if in.Name == "" {
		return nil, &RequestError{Field: "name", Reason: "is required"}
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, &RequestError{Field: "status", Reason: "is not a project status"}
	}

	payload := map[string]any{"name": in.Name}
	if in.Description != nil {
		payload["description"] = *in.Description
	}
	if in.Status != nil {
		payload["status"] = *in.Status
	}

	var out models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProjectInput is a partial update: only non-nil fields are sent.
type UpdateProjectInput struct {
	Name        *string
	Description *string
	Status      *models.ProjectStatus
}

// UpdateProject applies a partial update to a project.
func (c *Client) UpdateProject(ctx context.Context, id string, in UpdateProjectInput) (*models.Project, error) {
	pid, err := models.ParseID(id)
	if err != nil {
		return nil, &RequestError{Field: "id", Reason: "must be numeric"}
	}
	if in.Status != nil && !in.Status.Valid() {
		return nil, &RequestError{Field: "status", Reason: "is not a project status"}
	}

	payload := map[string]any{}
	if in.Name != nil {
		payload["name"] = *in.Name
	}
	if in.Description != nil {
		payload["description"] = *in.Description
	}
	if in.Status != nil {
		payload["status"] = *in.Status
	}

	var out models.Project
	if err := c.do(ctx, http.MethodPut, "/projects/"+models.FormatID(pid), nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteProject deletes a project and returns the server's confirmation.
func (c *Client) DeleteProject(ctx context.Context, id string) (string, error) {
	pid, err := models.ParseID(id)
	if err != nil {
		return "", &RequestError{Field: "id", Reason: "must be numeric"}
	}

	var out messageResponse
	if err := c.do(ctx, http.MethodDelete, "/projects/"+models.FormatID(pid), nil, nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
