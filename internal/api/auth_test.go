package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jpalma/trak/internal/models"
)

func TestLogin_PersistsSessionThenProfileMatches(t *testing.T) {
	user := models.User{ID: 42, Email: "ana@example.com", Name: "Ana"}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds loginRequest
		json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email != "ana@example.com" || creds.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(messageResponse{Message: "invalid credentials"})
			return
		}
		json.NewEncoder(w).Encode(AuthResponse{Token: "tok-new", User: user})
	})
	mux.HandleFunc("GET /auth/profile", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(user)
	})

	client, sess, srv := newTestClient(mux)
	defer srv.Close()
	sess.token = ""

	resp, err := client.Login(context.Background(), "ana@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token != "tok-new" || resp.User.ID != 42 {
		t.Errorf("login response = %+v", resp)
	}
	if sess.token != "tok-new" || sess.user == nil || sess.user.ID != 42 {
		t.Errorf("session not persisted: token=%q user=%+v", sess.token, sess.user)
	}

	// The stored token authenticates the follow-up profile fetch
	profile, err := client.Profile(context.Background())
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if profile.ID != resp.User.ID {
		t.Errorf("profile id = %d, expected %d", profile.ID, resp.User.ID)
	}
}

func TestRegister_DoesNotLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(messageResponse{Message: "user created"})
	})

	client, sess, srv := newTestClient(mux)
	defer srv.Close()
	sess.token = ""

	msg, err := client.Register(context.Background(), RegisterInput{
		Email:    "ana@example.com",
		Password: "secret",
		Name:     "Ana",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if msg != "user created" {
		t.Errorf("message = %q", msg)
	}
	if sess.token != "" {
		t.Error("register must not establish a session")
	}
}

func TestLogout_ClearsSession(t *testing.T) {
	client, sess, srv := newTestClient(http.NewServeMux())
	defer srv.Close()

	if err := client.Logout(); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if sess.token != "" || sess.cleared != 1 {
		t.Errorf("session not cleared: %+v", sess)
	}
}
