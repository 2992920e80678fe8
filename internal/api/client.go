package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/jpalma/trak/internal/models"
)

// loginPath is exempt from the 401 session-invalidation side effect so that
// bad credentials surface on the login form instead of looping back to it.
const loginPath = "/auth/login"

// Session is the slice of the session store the client needs: the current
// token before every dispatch, saving on login, clearing on 401.
type Session interface {
	Token() string
	Save(token string, user *models.User) error
	Clear() error
}

// Client is the single shared HTTP client for the task-management API.
// Every request goes through do, which applies the request stage (bearer
// token, request id, logging) and the response stage (logging, error
// classification).
type Client struct {
	http    *http.Client
	baseURL string
	session Session
	logger  *log.Logger
}

// New creates a client for the given base endpoint. logger may be nil.
func New(baseURL string, session Session, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		http:    &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		logger:  logger,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// do performs one API round-trip. body is marshaled as JSON when non-nil;
// the response body is decoded into out when non-nil and the status is 2xx.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	// Request stage: read the token synchronously so no request leaves
	// without the latest known credential.
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)
	c.logger.Printf("-> %s %s id=%s", method, path, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("<- %s %s id=%s error=%v", method, path, reqID, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Printf("<- %s %s id=%s status=%d", method, path, reqID, resp.StatusCode)

	// Response stage: classification
	switch {
	case resp.StatusCode == http.StatusUnauthorized && path != loginPath:
		// Clearing is idempotent; a burst of in-flight requests all
		// hitting 401 is safe.
		if err := c.session.Clear(); err != nil {
			c.logger.Printf("session clear failed: %v", err)
		}
		return fmt.Errorf("%s %s: %w", method, path, ErrSessionExpired)

	case resp.StatusCode == http.StatusNotFound && method == http.MethodGet:
		return fmt.Errorf("%s %s: %w", method, path, ErrResourceGone)

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		var msg messageResponse
		_ = json.Unmarshal(raw, &msg)
		return &APIError{Status: resp.StatusCode, Message: msg.Message}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("%s %s: decoding response: %w", method, path, err)
		}
	}
	return nil
}
