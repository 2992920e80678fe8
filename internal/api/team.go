package api

import (
	"context"
	"net/http"

	"github.com/jpalma/trak/internal/models"
)

type membersResponse struct {
	Members []models.TeamMember `json:"members"`
}

type memberTasksResponse struct {
	Tasks []models.Task `json:"tasks"`
}

// TeamMembers lists all team members.
func (c *Client) TeamMembers(ctx context.Context) ([]models.TeamMember, error) {
	var out membersResponse
	if err := c.do(ctx, http.MethodGet, "/team/members", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Members, nil
}

// MemberTasks lists the tasks assigned to one member.
func (c *Client) MemberTasks(ctx context.Context, memberID string) ([]models.Task, error) {
	mid, err := models.ParseID(memberID)
	if err != nil {
		return nil, &RequestError{Field: "memberId", Reason: "must be numeric"}
	}

	var out memberTasksResponse
	if err := c.do(ctx, http.MethodGet, "/team/members/"+models.FormatID(mid)+"/tasks", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}
