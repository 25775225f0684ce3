package printshop

import (
	"context"
	"errors"
)

// ErrInvalidCredentials is reported when the login comparison fails.
var ErrInvalidCredentials = errors.New("printshop: invalid credentials")

// Credentials are the literal username/password pair accepted by the gate.
type Credentials struct {
	Username string
	Password string
}

// DefaultCredentials returns the built-in admin login.
func DefaultCredentials() Credentials {
	return Credentials{Username: "admin", Password: "password"}
}

// Authenticator gates the dashboard behind an exact string comparison.
type Authenticator struct {
	creds     Credentials
	sessions  SessionStore
	telemetry Telemetry
}

// NewAuthenticator wires the gate. Zero credentials fall back to
// DefaultCredentials and a nil store to an in-memory one.
func NewAuthenticator(creds Credentials, sessions SessionStore, telemetry Telemetry) *Authenticator {
	if creds == (Credentials{}) {
		creds = DefaultCredentials()
	}
	if sessions == nil {
		sessions = NewInMemorySessionStore()
	}
	return &Authenticator{creds: creds, sessions: sessions, telemetry: normalizeTelemetry(telemetry)}
}

// Sessions exposes the backing store.
func (a *Authenticator) Sessions() SessionStore {
	return a.sessions
}

// Login flips the session's authenticated flag when both values match and
// persists it. On mismatch the flag is left false, the typed username is kept
// on the returned session for re-rendering, and ErrInvalidCredentials is
// returned. A rejected anonymous session is never stored; a rejected
// authenticated one is dropped.
func (a *Authenticator) Login(ctx context.Context, session Session, username, password string) (Session, error) {
	session.Username = username
	if username != a.creds.Username || password != a.creds.Password {
		if session.Authenticated {
			if err := a.sessions.Delete(ctx, session.ID); err != nil {
				return session, err
			}
		}
		session.Authenticated = false
		a.telemetry.Record(ctx, "printshop.login.rejected", map[string]any{"session_id": session.ID})
		return session, ErrInvalidCredentials
	}
	session.Authenticated = true
	if err := a.sessions.Save(ctx, session); err != nil {
		return session, err
	}
	a.telemetry.Record(ctx, "printshop.login.accepted", map[string]any{"session_id": session.ID})
	return session, nil
}

// Logout clears the authenticated flag and both login fields. The session is
// removed from the store, so later requests resolve it as anonymous.
func (a *Authenticator) Logout(ctx context.Context, session Session) (Session, error) {
	session.Authenticated = false
	session.Username = ""
	if err := a.sessions.Delete(ctx, session.ID); err != nil {
		return session, err
	}
	a.telemetry.Record(ctx, "printshop.logout", map[string]any{"session_id": session.ID})
	return session, nil
}
