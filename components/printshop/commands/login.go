package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	printshop "github.com/goliatone/go-printshop/components/printshop"
)

type authenticator interface {
	Login(ctx context.Context, session printshop.Session, username, password string) (printshop.Session, error)
	Logout(ctx context.Context, session printshop.Session) (printshop.Session, error)
	Sessions() printshop.SessionStore
}

// LoginInput carries the submitted login form for a browser session.
type LoginInput struct {
	SessionID string
	Username  string
	Password  string
}

// LoginCommand runs the credential check for a session. Only an accepted
// login is persisted, under the given session id.
type LoginCommand struct {
	auth      authenticator
	telemetry Telemetry
}

// NewLoginCommand creates a command instance.
func NewLoginCommand(auth authenticator, telemetry Telemetry) *LoginCommand {
	return &LoginCommand{auth: auth, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[LoginInput] = (*LoginCommand)(nil)

// Execute returns printshop.ErrInvalidCredentials on a mismatch.
func (c *LoginCommand) Execute(ctx context.Context, msg LoginInput) error {
	if c.auth == nil {
		return errors.New("login command requires authenticator")
	}
	session, err := printshop.ResolveSession(ctx, c.auth.Sessions(), msg.SessionID)
	if err != nil {
		return err
	}
	_, err = c.auth.Login(ctx, session, msg.Username, msg.Password)
	c.telemetry.Record(ctx, "printshop.command.login", map[string]any{
		"session_id": session.ID,
		"accepted":   err == nil,
	})
	return err
}

// LogoutInput identifies the session to log out.
type LogoutInput struct {
	SessionID string
}

// LogoutCommand clears the authenticated flag of a session.
type LogoutCommand struct {
	auth      authenticator
	telemetry Telemetry
}

// NewLogoutCommand creates a command instance.
func NewLogoutCommand(auth authenticator, telemetry Telemetry) *LogoutCommand {
	return &LogoutCommand{auth: auth, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[LogoutInput] = (*LogoutCommand)(nil)

// Execute logs the session out. Unknown sessions are already logged out.
func (c *LogoutCommand) Execute(ctx context.Context, msg LogoutInput) error {
	if c.auth == nil {
		return errors.New("logout command requires authenticator")
	}
	session, err := c.auth.Sessions().Load(ctx, msg.SessionID)
	if errors.Is(err, printshop.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := c.auth.Logout(ctx, session); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "printshop.command.logout", map[string]any{"session_id": session.ID})
	return nil
}
