package commands

import (
	"context"
	"errors"
	"testing"

	printshop "github.com/goliatone/go-printshop/components/printshop"
)

type stubTelemetry struct {
	events []string
}

func (s *stubTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	s.events = append(s.events, event)
}

type countingNotifier struct {
	sessions []string
}

func (n *countingNotifier) Notify(ctx context.Context, _ printshop.Toast) error {
	n.sessions = append(n.sessions, printshop.SessionIDFrom(ctx))
	return nil
}

var pdf = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

func validForm() printshop.OrderForm {
	return printshop.OrderForm{
		Name:        "Jane Doe",
		PhoneNumber: "5551234567",
		Documents:   []printshop.UploadedFile{printshop.NewUploadedFile("flyer.pdf", "application/pdf", pdf)},
		Copies:      "2",
		PrintType:   "color",
	}
}

func instantSubmitters(notifier printshop.Notifier) *printshop.Submitters {
	return printshop.NewSubmitters(printshop.SubmitterOptions{
		Delay:    printshop.DelayFunc(func(context.Context) error { return nil }),
		Notifier: notifier,
	})
}

func TestLoginCommand(t *testing.T) {
	ctx := context.Background()
	store := printshop.NewInMemorySessionStore()
	if err := store.Save(ctx, printshop.Session{ID: "s1"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	telemetry := &stubTelemetry{}
	cmd := NewLoginCommand(printshop.NewAuthenticator(printshop.Credentials{}, store, nil), telemetry)

	err := cmd.Execute(ctx, LoginInput{SessionID: "s1", Username: "admin", Password: "wrong"})
	if !errors.Is(err, printshop.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if err := cmd.Execute(ctx, LoginInput{SessionID: "s1", Username: "admin", Password: "password"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	session, _ := store.Load(ctx, "s1")
	if !session.Authenticated {
		t.Fatalf("expected session to be authenticated")
	}
	if len(telemetry.events) != 2 {
		t.Fatalf("expected telemetry for both attempts, got %v", telemetry.events)
	}
}

func TestLoginCommandPersistsOnlyAcceptedLogins(t *testing.T) {
	ctx := context.Background()
	store := printshop.NewInMemorySessionStore()
	cmd := NewLoginCommand(printshop.NewAuthenticator(printshop.Credentials{}, store, nil), nil)

	err := cmd.Execute(ctx, LoginInput{SessionID: "fresh", Username: "admin", Password: "wrong"})
	if !errors.Is(err, printshop.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("rejected login must not store a session")
	}
	if err := cmd.Execute(ctx, LoginInput{SessionID: "fresh", Username: "admin", Password: "password"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	session, err := store.Load(ctx, "fresh")
	if err != nil || !session.Authenticated {
		t.Fatalf("expected authenticated session under the browser id, got %+v (%v)", session, err)
	}
}

func TestLogoutCommand(t *testing.T) {
	ctx := context.Background()
	store := printshop.NewInMemorySessionStore()
	auth := printshop.NewAuthenticator(printshop.Credentials{}, store, nil)
	if _, err := auth.Login(ctx, printshop.Session{ID: "s1"}, "admin", "password"); err != nil {
		t.Fatalf("login: %v", err)
	}
	cmd := NewLogoutCommand(auth, nil)
	if err := cmd.Execute(ctx, LogoutInput{SessionID: "s1"}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if _, err := store.Load(ctx, "s1"); !errors.Is(err, printshop.ErrSessionNotFound) {
		t.Fatalf("expected logout to drop the session, got %v", err)
	}
	if err := cmd.Execute(ctx, LogoutInput{SessionID: "unknown"}); err != nil {
		t.Fatalf("unknown session should be a no-op, got %v", err)
	}
}

func TestCommandsRequireDependencies(t *testing.T) {
	if err := NewLoginCommand(nil, nil).Execute(context.Background(), LoginInput{}); err == nil {
		t.Fatalf("expected error without authenticator")
	}
	if err := NewLogoutCommand(nil, nil).Execute(context.Background(), LogoutInput{}); err == nil {
		t.Fatalf("expected error without authenticator")
	}
	if err := NewSubmitOrderCommand(nil, nil, nil).Execute(context.Background(), SubmitOrderInput{}); err == nil {
		t.Fatalf("expected error without validator")
	}
}

func TestSubmitOrderCommand(t *testing.T) {
	notifier := &countingNotifier{}
	telemetry := &stubTelemetry{}
	cmd := NewSubmitOrderCommand(printshop.NewOrderValidator(), instantSubmitters(notifier), telemetry)

	var receipt printshop.OrderReceipt
	if err := cmd.Execute(context.Background(), SubmitOrderInput{SessionID: "s1", Form: validForm(), Receipt: &receipt}); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if receipt.Order.Copies != 2 || receipt.Order.ID == "" {
		t.Fatalf("unexpected receipt %+v", receipt)
	}
	if len(notifier.sessions) != 1 || notifier.sessions[0] != "s1" {
		t.Fatalf("expected one toast scoped to s1, got %v", notifier.sessions)
	}
}

func TestSubmitOrderCommandRejectsInvalidForm(t *testing.T) {
	notifier := &countingNotifier{}
	telemetry := &stubTelemetry{}
	cmd := NewSubmitOrderCommand(printshop.NewOrderValidator(), instantSubmitters(notifier), telemetry)

	form := validForm()
	form.Copies = "101"
	err := cmd.Execute(context.Background(), SubmitOrderInput{SessionID: "s1", Form: form})
	var verr *printshop.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Fields[printshop.FieldCopies] != "Maximum 100 copies allowed." {
		t.Fatalf("unexpected copies message %q", verr.Fields[printshop.FieldCopies])
	}
	if len(notifier.sessions) != 0 {
		t.Fatalf("invalid form must not emit a toast")
	}
	if len(telemetry.events) != 1 || telemetry.events[0] != "printshop.command.order_invalid" {
		t.Fatalf("unexpected telemetry %v", telemetry.events)
	}
}
