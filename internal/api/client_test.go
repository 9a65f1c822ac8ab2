package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIntroDecodesCredentialsAndGreeting(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/flow_intro" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "secret" {
			t.Errorf("missing api key header, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"session_id":"s1","session_token":"t1","messages":["Wuff!",{"text":"Hallo","sender":"coach"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, WithAPIKey("secret"))
	resp, err := client.Intro(context.Background())
	if err != nil {
		t.Fatalf("Intro: %v", err)
	}

	if resp.SessionID != "s1" || resp.SessionToken != "t1" {
		t.Fatalf("unexpected credentials: %+v", resp)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Messages))
	}
	if resp.Messages[0].Text != "Wuff!" || resp.Messages[0].Sender != "" {
		t.Fatalf("plain string message not normalized: %+v", resp.Messages[0])
	}
	if resp.Messages[1].Text != "Hallo" || resp.Messages[1].Sender != "coach" {
		t.Fatalf("object message not normalized: %+v", resp.Messages[1])
	}
}

func TestStepSendsSessionCredentials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["session_id"] != "s1" || body["session_token"] != "t1" || body["message"] != "hi" {
			t.Errorf("unexpected body: %v", body)
		}
		_, _ = w.Write([]byte(`{"messages":["ok"],"done":true}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	resp, err := client.Step(context.Background(), "s1", "t1", "hi")
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !resp.Done {
		t.Fatal("done flag lost")
	}
	if len(resp.Messages) != 1 || resp.Messages[0].Text != "ok" {
		t.Fatalf("unexpected messages: %+v", resp.Messages)
	}
}

func TestStepUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Step(context.Background(), "s1", "stale", "hi")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestStepServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	_, err := client.Step(context.Background(), "s1", "t1", "hi")
	if err == nil {
		t.Fatal("expected an error for a 500 response")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("a 500 must not be classified as unauthorized")
	}
}

func TestStepMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"messages": [`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	if _, err := client.Step(context.Background(), "s1", "t1", "hi"); err == nil {
		t.Fatal("expected an error for a truncated body")
	}
}

func TestMessageUnmarshalVariants(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		text   string
		sender string
	}{
		{"plain string", `"Hallo"`, "Hallo", ""},
		{"text field", `{"text":"a","sender":"coach"}`, "a", "coach"},
		{"content fallback", `{"content":"b"}`, "b", ""},
		{"missing text", `{"sender":"coach"}`, "", "coach"},
	}

	for _, tc := range cases {
		var msg Message
		if err := json.Unmarshal([]byte(tc.raw), &msg); err != nil {
			t.Fatalf("%s: unmarshal: %v", tc.name, err)
		}
		if msg.Text != tc.text || msg.Sender != tc.sender {
			t.Fatalf("%s: got %+v", tc.name, msg)
		}
	}
}
