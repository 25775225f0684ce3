package printshop

import (
	"context"
	"errors"
	"testing"
)

func TestAuthenticatorAcceptsExactCredentials(t *testing.T) {
	ctx := context.Background()
	store := NewInMemorySessionStore()
	auth := NewAuthenticator(Credentials{}, store, nil)

	session, err := auth.Login(ctx, Session{ID: "s1"}, "admin", "password")
	if err != nil {
		t.Fatalf("expected login to succeed, got %v", err)
	}
	if !session.Authenticated {
		t.Fatalf("expected authenticated session")
	}
	stored, err := store.Load(ctx, "s1")
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if !stored.Authenticated || stored.Username != "admin" {
		t.Fatalf("expected stored session to be authenticated admin, got %+v", stored)
	}
}

func TestAuthenticatorRejectsAnythingElse(t *testing.T) {
	cases := []struct{ user, pass string }{
		{"", ""},
		{"admin", ""},
		{"", "password"},
		{"Admin", "password"},
		{"admin", "Password"},
		{" admin", "password"},
		{"admin", "password "},
		{"root", "toor"},
	}
	auth := NewAuthenticator(Credentials{}, nil, nil)
	for _, tc := range cases {
		session, err := auth.Login(context.Background(), Session{ID: "s"}, tc.user, tc.pass)
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%q/%q: expected ErrInvalidCredentials, got %v", tc.user, tc.pass, err)
		}
		if session.Authenticated {
			t.Fatalf("%q/%q: session should stay anonymous", tc.user, tc.pass)
		}
		if session.Username != tc.user {
			t.Fatalf("%q/%q: expected typed username to be kept, got %q", tc.user, tc.pass, session.Username)
		}
	}
}

func TestAuthenticatorRejectionResetsPreviousLogin(t *testing.T) {
	auth := NewAuthenticator(Credentials{}, nil, nil)
	session, err := auth.Login(context.Background(), Session{ID: "s"}, "admin", "password")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	session, err = auth.Login(context.Background(), session, "admin", "nope")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected rejection, got %v", err)
	}
	if session.Authenticated {
		t.Fatalf("failed login must leave the flag false")
	}
	if _, err := auth.Sessions().Load(context.Background(), "s"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected previous login to be dropped, got %v", err)
	}
}

func TestAuthenticatorLogoutClearsFlag(t *testing.T) {
	ctx := context.Background()
	store := NewInMemorySessionStore()
	auth := NewAuthenticator(Credentials{Username: "ops", Password: "s3cret"}, store, nil)

	session, err := auth.Login(ctx, Session{ID: "s1"}, "ops", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	session, err = auth.Logout(ctx, session)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	if session.Authenticated || session.Username != "" {
		t.Fatalf("expected cleared session, got %+v", session)
	}
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected logged out session to be removed, got %v", err)
	}
}

func TestAuthenticatorRejectionDoesNotStoreAnonymousSessions(t *testing.T) {
	ctx := context.Background()
	store := NewInMemorySessionStore()
	auth := NewAuthenticator(Credentials{}, store, nil)

	for range 50 {
		if _, err := auth.Login(ctx, Session{ID: NewSessionID()}, "admin", "nope"); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected rejection, got %v", err)
		}
	}
	if store.Len() != 0 {
		t.Fatalf("rejected logins must not create sessions, store holds %d", store.Len())
	}
}

func TestAuthenticatorRecordsTelemetry(t *testing.T) {
	rec := &recordingTelemetry{}
	auth := NewAuthenticator(Credentials{}, nil, rec)
	_, _ = auth.Login(context.Background(), Session{ID: "s"}, "admin", "bad")
	_, _ = auth.Login(context.Background(), Session{ID: "s"}, "admin", "password")

	if len(rec.events) != 2 {
		t.Fatalf("expected two events, got %v", rec.events)
	}
	if rec.events[0] != "printshop.login.rejected" || rec.events[1] != "printshop.login.accepted" {
		t.Fatalf("unexpected events %v", rec.events)
	}
}
