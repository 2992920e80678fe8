package api

import (
	"context"
	"net/http"

	"github.com/jpalma/trak/internal/models"
)

// AuthResponse is the payload a successful login returns.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// RegisterInput holds the fields for account creation.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Register creates a new account. It does not sign the user in; callers
// chain a Login afterward.
func (c *Client) Register(ctx context.Context, in RegisterInput) (string, error) {
	if in.Email == "" {
		return "", &RequestError{Field: "email", Reason: "is required"}
	}
	if in.Password == "" {
		return "", &RequestError{Field: "password", Reason: "is required"}
	}
	if in.Name == "" {
		return "", &RequestError{Field: "name", Reason: "is required"}
	}

	var out messageResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and, on success, persists the token and user record
// to the session store. A 401 here propagates to the caller and does not
// touch an existing session.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, loginPath, nil, loginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	if err := c.session.Save(out.Token, &out.User); err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the authenticated user's record.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout discards the local session. Purely local; there is no server call.
func (c *Client) Logout() error {
	return c.session.Clear()
}
