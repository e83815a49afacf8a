package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(out, "interviewctl ") {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestProctorReplay(t *testing.T) {
	script := filepath.Join(t.TempDir(), "violation.txt")
	if err := os.WriteFile(script, []byte("0s granted\n1s leave\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "proctor", "replay", script)
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if !strings.Contains(out, "terminated at 4s: fullscreen_violation") {
		t.Errorf("Unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "warn 3") {
		t.Errorf("Expected countdown in output:\n%s", out)
	}

	out, err = execute(t, "0s granted\n2s esc\n2.5s esc\n", "proctor", "replay", "-")
	if err != nil {
		t.Fatalf("replay from stdin error: %v", err)
	}
	if !strings.Contains(out, "user_exit") {
		t.Errorf("Expected user_exit:\n%s", out)
	}

	if _, err := execute(t, "1s fly\n", "proctor", "replay", "-"); err == nil {
		t.Error("Expected error for invalid script")
	}
}

// apiRecorder serves the lifecycle endpoints the CLI calls
type apiRecorder struct {
	mu    sync.Mutex
	paths []string
	auth  []string
	body  map[string]string
}

func (a *apiRecorder) server(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.paths = append(a.paths, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)
		a.auth = append(a.auth, r.Header.Get("Authorization"))
		if r.Body != nil {
			json.NewDecoder(r.Body).Decode(&a.body)
		}
		a.mu.Unlock()

		switch {
		case strings.HasSuffix(r.URL.Path, "/reconcile"):
			json.NewEncoder(w).Encode(map[string]int{"repaired": 4})
		case strings.HasSuffix(r.URL.Path, "/expire-stale"):
			json.NewEncoder(w).Encode(map[string]int{"expired": 2})
		case strings.HasSuffix(r.URL.Path, "/terminate"):
			json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		default:
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "interview not found", "code": "interview_not_found"})
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestMaintenanceCommands(t *testing.T) {
	api := &apiRecorder{}
	srv := api.server(t)
	base := []string{"--api-url", srv.URL + "/api/v1", "--token", "admin-token", "--retries", "0"}

	out, err := execute(t, "", append(base, "reconcile", "--limit", "20")...)
	if err != nil || !strings.Contains(out, "repaired 4") {
		t.Fatalf("reconcile: %q %v", out, err)
	}

	out, err = execute(t, "", append(base, "expire-stale", "--older-than", "2h")...)
	if err != nil || !strings.Contains(out, "expired 2") {
		t.Fatalf("expire-stale: %q %v", out, err)
	}

	id := uuid.New()
	out, err = execute(t, "", append(base, "terminate", id.String(), "--reason", "abandoned")...)
	if err != nil || !strings.Contains(out, "terminated "+id.String()+" (abandoned)") {
		t.Fatalf("terminate: %q %v", out, err)
	}

	if _, err := execute(t, "", append(base, "get", uuid.NewString())...); err == nil {
		t.Error("Expected error for missing interview")
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	want := []string{
		"POST /api/v1/admin/interviews/reconcile?limit=20",
		"POST /api/v1/admin/interviews/expire-stale?olderThan=2h0m0s&limit=100",
		"POST /api/v1/admin/interviews/" + id.String() + "/terminate?",
	}
	for i, w := range want {
		if api.paths[i] != w {
			t.Errorf("Call %d: expected %q, got %q", i, w, api.paths[i])
		}
		if api.auth[i] != "Bearer admin-token" {
			t.Errorf("Call %d: missing token", i)
		}
	}
}

func TestProctorRunReportsTermination(t *testing.T) {
	api := &apiRecorder{}
	srv := api.server(t)
	id := uuid.New()

	out, err := execute(t, "esc\nesc\n",
		"--api-url", srv.URL+"/api/v1", "--token", "candidate-token",
		"proctor", "run", id.String(), "--settle", "0s")
	if err != nil {
		t.Fatalf("proctor run error: %v", err)
	}
	if !strings.Contains(out, "session ended: user_exit") {
		t.Errorf("Unexpected output:\n%s", out)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.paths) != 1 || api.paths[0] != "POST /api/v1/interviews/"+id.String()+"/terminate?" {
		t.Errorf("Unexpected calls %v", api.paths)
	}
	if api.body["reason"] != "user_exit" {
		t.Errorf("Expected user_exit reason, got %v", api.body)
	}
}
