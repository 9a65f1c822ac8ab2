package flow

import (
	"context"
	"testing"
	"time"
)

func testScript() Script {
	return Script{
		Greeting: []string{"hallo"},
		Replies: [][]string{
			{"eins"},
			{"zwei", "fertig"},
		},
	}
}

func TestIntroIssuesCredentials(t *testing.T) {
	svc := NewService(testScript())
	ctx := context.Background()

	intro, err := svc.Intro(ctx)
	if err != nil {
		t.Fatalf("Intro: %v", err)
	}
	if intro.SessionID == "" || intro.SessionToken == "" {
		t.Fatalf("missing credentials: %+v", intro)
	}
	if len(intro.Messages) != 1 || intro.Messages[0] != "hallo" {
		t.Fatalf("unexpected greeting: %v", intro.Messages)
	}
	if svc.ActiveSessions() != 1 {
		t.Fatalf("expected one registered session, got %d", svc.ActiveSessions())
	}
}

func TestStepWalksScriptAndCompletes(t *testing.T) {
	svc := NewService(testScript())
	ctx := context.Background()
	intro, _ := svc.Intro(ctx)

	first, err := svc.Step(ctx, intro.SessionID, intro.SessionToken, "hi")
	if err != nil {
		t.Fatalf("first step: %v", err)
	}
	if first.Done {
		t.Fatal("first step should not complete the flow")
	}
	if len(first.Messages) != 1 || first.Messages[0] != "eins" {
		t.Fatalf("unexpected first batch: %v", first.Messages)
	}

	second, err := svc.Step(ctx, intro.SessionID, intro.SessionToken, "weiter")
	if err != nil {
		t.Fatalf("second step: %v", err)
	}
	if !second.Done {
		t.Fatal("final batch should report done")
	}
	if len(second.Messages) != 2 {
		t.Fatalf("unexpected final batch: %v", second.Messages)
	}
	if svc.ActiveSessions() != 0 {
		t.Fatal("completed session should be dropped")
	}

	// The session is gone; another step is unauthorized.
	if _, err := svc.Step(ctx, intro.SessionID, intro.SessionToken, "noch"); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStepRejectsBadToken(t *testing.T) {
	svc := NewService(testScript())
	ctx := context.Background()
	intro, _ := svc.Intro(ctx)

	if _, err := svc.Step(ctx, intro.SessionID, "wrong", "hi"); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Step(ctx, "missing", intro.SessionToken, "hi"); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStepExpiresInactiveSessions(t *testing.T) {
	current := time.Unix(1700000000, 0)
	svc := NewService(testScript(), WithClock(func() time.Time { return current }))
	ctx := context.Background()
	intro, _ := svc.Intro(ctx)

	current = current.Add(SessionTimeout + time.Minute)

	if _, err := svc.Step(ctx, intro.SessionID, intro.SessionToken, "hi"); err != ErrUnauthorized {
		t.Fatalf("expected ErrUnauthorized for expired session, got %v", err)
	}
	if svc.ActiveSessions() != 0 {
		t.Fatal("expired session should be dropped")
	}
}
