package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jpalma/trak/internal/models"
)

// fakeSession is an in-memory stand-in for the sqlite session store.
type fakeSession struct {
	token   string
	user    *models.User
	cleared int
}

func (f *fakeSession) Token() string { return f.token }

func (f *fakeSession) Save(token string, user *models.User) error {
	f.token = token
	f.user = user
	return nil
}

func (f *fakeSession) Clear() error {
	f.token = ""
	f.user = nil
	f.cleared++
	return nil
}

func newTestClient(handler http.Handler) (*Client, *fakeSession, *httptest.Server) {
	srv := httptest.NewServer(handler)
	sess := &fakeSession{token: "tok-abc"}
	return New(srv.URL, sess, nil), sess, srv
}

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotContentType, gotReqID string
	client, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotReqID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode(membersResponse{})
	}))
	defer srv.Close()

	if _, err := client.TeamMembers(context.Background()); err != nil {
		t.Fatalf("TeamMembers: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotReqID == "" {
		t.Error("X-Request-ID not set")
	}
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	var hasAuth bool
	client, sess, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode(membersResponse{})
	}))
	defer srv.Close()
	sess.token = ""

	if _, err := client.TeamMembers(context.Background()); err != nil {
		t.Fatalf("TeamMembers: %v", err)
	}
	if hasAuth {
		t.Error("Authorization header sent without a token")
	}
}

func TestClient_401ClearsSessionExceptLogin(t *testing.T) {
	client, sess, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(messageResponse{Message: "invalid credentials"})
	}))
	defer srv.Close()

	// Any endpoint but login: session cleared, classified error returned
	_, err := client.Profile(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("Profile on 401 = %v, expected ErrSessionExpired", err)
	}
	if sess.cleared != 1 || sess.token != "" {
		t.Errorf("session not cleared: cleared=%d token=%q", sess.cleared, sess.token)
	}

	// Repeated 401s stay safe
	_, err = client.Profile(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("second Profile on 401 = %v", err)
	}

	// Login is exempt: error propagates as APIError, no clearing
	sess.token = "still-here"
	before := sess.cleared
	_, err = client.Login(context.Background(), "a@b.c", "wrong")
	if errors.Is(err, ErrSessionExpired) {
		t.Fatal("401 from login must not be classified as session expiry")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("401 from login = %v, expected APIError 401", err)
	}
	if apiErr.Message != "invalid credentials" {
		t.Errorf("server message lost: %q", apiErr.Message)
	}
	if sess.cleared != before || sess.token != "still-here" {
		t.Error("401 from login must not clear an existing session")
	}
}

func TestClient_404Classification(t *testing.T) {
	client, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(messageResponse{Message: "not found"})
	}))
	defer srv.Close()

	// Read: classified as a vanished resource
	_, err := client.GetProject(context.Background(), "9")
	if !errors.Is(err, ErrResourceGone) {
		t.Errorf("GET 404 = %v, expected ErrResourceGone", err)
	}

	// Mutations: plain APIError
	for name, call := range map[string]func() error{
		"delete": func() error { _, err := client.DeleteTask(context.Background(), "9"); return err },
		"update": func() error {
			title := "x"
			_, err := client.UpdateTask(context.Background(), "9", UpdateTaskInput{Title: &title})
			return err
		},
		"status": func() error {
			_, err := client.UpdateTaskStatus(context.Background(), "9", models.TaskCompleted)
			return err
		},
	} {
		err := call()
		if errors.Is(err, ErrResourceGone) {
			t.Errorf("%s: 404 on a mutation must not be swallowed as ErrResourceGone", name)
		}
		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound {
			t.Errorf("%s: 404 on a mutation = %v, expected APIError 404", name, err)
		}
	}
}

func TestClient_ServerMessagePropagates(t *testing.T) {
	client, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(messageResponse{Message: "title too long"})
	}))
	defer srv.Close()

	_, err := client.CreateProject(context.Background(), CreateProjectInput{Name: "x"})
	if got := Message(err, "fallback"); got != "title too long" {
		t.Errorf("Message() = %q", got)
	}
}

func TestClient_MessageFallback(t *testing.T) {
	client, _, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := client.CreateProject(context.Background(), CreateProjectInput{Name: "x"})
	if got := Message(err, "could not save project"); got != "could not save project" {
		t.Errorf("Message() = %q", got)
	}
}
