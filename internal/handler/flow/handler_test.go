package flow

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	flowService "github.com/wuffchat/wuffchat-cli/internal/service/flow"
)

func setupRouter() *chi.Mux {
	svc := flowService.NewService(flowService.Script{
		Greeting: []string{"hallo"},
		Replies:  [][]string{{"eins"}, {"zwei"}},
	})
	handler := New(svc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, r http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestIntroReturnsCredentialsAndGreeting(t *testing.T) {
	r := setupRouter()

	resp := postJSON(t, r, "/flow_intro", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		SessionID    string   `json:"session_id"`
		SessionToken string   `json:"session_token"`
		Messages     []string `json:"messages"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.SessionID == "" || body.SessionToken == "" {
		t.Fatalf("missing credentials: %+v", body)
	}
	if len(body.Messages) != 1 {
		t.Fatalf("unexpected greeting: %v", body.Messages)
	}
}

func TestStepRoundTrip(t *testing.T) {
	r := setupRouter()

	intro := postJSON(t, r, "/flow_intro", nil)
	var creds struct {
		SessionID    string `json:"session_id"`
		SessionToken string `json:"session_token"`
	}
	if err := json.Unmarshal(intro.Body.Bytes(), &creds); err != nil {
		t.Fatalf("decode intro: %v", err)
	}

	resp := postJSON(t, r, "/flow_step", map[string]string{
		"session_id":    creds.SessionID,
		"session_token": creds.SessionToken,
		"message":       "mein hund bellt",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body struct {
		Messages []string `json:"messages"`
		Done     bool     `json:"done"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Messages) != 1 || body.Messages[0] != "eins" {
		t.Fatalf("unexpected batch: %v", body.Messages)
	}
	if body.Done {
		t.Fatal("first step should not be done")
	}
}

func TestStepUnauthorized(t *testing.T) {
	r := setupRouter()

	resp := postJSON(t, r, "/flow_step", map[string]string{
		"session_id":    "missing",
		"session_token": "wrong",
		"message":       "hi",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestStepInvalidBody(t *testing.T) {
	r := setupRouter()

	req := httptest.NewRequest(http.MethodPost, "/flow_step", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
