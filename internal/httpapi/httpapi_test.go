package httpapi_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"suimu/internal/boundary"
	"suimu/internal/httpapi"
	"suimu/internal/logging"
	"suimu/internal/metrics"
	"suimu/internal/testsupport"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	recorder, err := metrics.NewRecorder()
	if err != nil {
		t.Fatalf("metrics.NewRecorder: %v", err)
	}
	svc := boundary.NewService(logging.NewNop(), recorder)
	srv := httptest.NewServer(httpapi.NewServer(svc, recorder.Handler(), logging.NewNop()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func TestInvokeReturnsEnvelope(t *testing.T) {
	srv := newTestServer(t)
	path := testsupport.SampleCSV(t)

	body, _ := json.Marshal(map[string]string{"csvPath": path})
	resp, err := http.Post(srv.URL+"/api/invoke/"+boundary.CommandGetMaybeMusicByCSVPath, "application/json", strings.NewReader(string(body)))
	if err != nil {
		t.Fatalf("POST invoke: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q", ct)
	}

	var result boundary.MaybeMusicResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	records, ok := result.Value()
	if !ok || len(records) != 3 {
		t.Fatalf("unexpected envelope: %+v", result)
	}
	if records[0].VideoID != "978601113791299585" {
		t.Fatalf("first record video_id = %q", records[0].VideoID)
	}
}

func TestInvokeFailureIsOrdinaryResponse(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/invoke/"+boundary.CommandGetMaybeMusicByCSVPath, "application/json",
		strings.NewReader(`{"csvPath":"/nonexistent/suimu.csv"}`))
	if err != nil {
		t.Fatalf("POST invoke: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var result boundary.MaybeMusicResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if result.OK || result.Kind != boundary.KindNotFound || result.Object != nil {
		t.Fatalf("expected NotFound failure, got %+v", result)
	}
}

func TestInvokeTransportErrors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		command string
		body    string
		status  int
	}{
		{name: "unknown command", command: "rip_disc", body: `{}`, status: http.StatusNotFound},
		{name: "missing csvPath", command: boundary.CommandGetMaybeMusicByCSVPath, body: `{}`, status: http.StatusBadRequest},
		{name: "wrong type", command: boundary.CommandGetMaybeMusicByCSVPath, body: `{"csvPath":1}`, status: http.StatusBadRequest},
		{name: "not json", command: boundary.CommandGetMaybeMusicByCSVPath, body: `csvPath=x`, status: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/api/invoke/"+tc.command, "application/json", strings.NewReader(tc.body))
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tc.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.status)
			}
			var payload httpapi.ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if payload.Error == "" {
				t.Fatal("expected error message")
			}
		})
	}
}

func TestMaybeMusicQueryRoute(t *testing.T) {
	srv := newTestServer(t)
	path := testsupport.SampleCSV(t)

	resp, err := http.Get(srv.URL + "/api/maybemusic?csvPath=" + url.QueryEscape(path))
	if err != nil {
		t.Fatalf("GET maybemusic: %v", err)
	}
	defer resp.Body.Close()
	var result boundary.MaybeMusicResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !result.OK || len(*result.Object) != 3 {
		t.Fatalf("unexpected envelope: %+v", result)
	}

	missing, err := http.Get(srv.URL + "/api/maybemusic")
	if err != nil {
		t.Fatalf("GET without csvPath: %v", err)
	}
	missing.Body.Close()
	if missing.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", missing.StatusCode)
	}
}

func TestRepeatedRequestIDIsJournaledTwice(t *testing.T) {
	store := testsupport.MustOpenHistory(t)
	svc := boundary.NewService(logging.NewNop(), store)
	srv := httptest.NewServer(httpapi.NewServer(svc, nil, logging.NewNop()).Handler())
	t.Cleanup(srv.Close)
	target := srv.URL + "/api/maybemusic?csvPath=" + url.QueryEscape(testsupport.SampleCSV(t))

	for range 2 {
		req, err := http.NewRequest(http.MethodGet, target, nil)
		if err != nil {
			t.Fatalf("new request: %v", err)
		}
		req.Header.Set("X-Request-Id", "retry-1")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET maybemusic: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
	}

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Fatalf("journaled invocations = %d, want 2", n)
	}
	entry, err := store.Get(context.Background(), "retry-1")
	if err != nil || entry == nil {
		t.Fatalf("Get retry-1: %v %v", entry, err)
	}
}

func TestHealthCommandsAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	health, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", health.StatusCode)
	}

	resp, err := http.Get(srv.URL + "/api/commands")
	if err != nil {
		t.Fatalf("GET commands: %v", err)
	}
	var commands httpapi.CommandsResponse
	if err := json.NewDecoder(resp.Body).Decode(&commands); err != nil {
		t.Fatalf("decode commands: %v", err)
	}
	resp.Body.Close()
	if len(commands.Commands) != 1 || commands.Commands[0] != boundary.CommandGetMaybeMusicByCSVPath {
		t.Fatalf("commands = %v", commands.Commands)
	}

	path := testsupport.SampleCSV(t)
	load, err := http.Get(srv.URL + "/api/maybemusic?csvPath=" + url.QueryEscape(path))
	if err != nil {
		t.Fatalf("GET maybemusic: %v", err)
	}
	load.Body.Close()

	scrape, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer scrape.Body.Close()
	data, err := io.ReadAll(scrape.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `suimu_boundary_invocations_total{command="get_maybemusic_by_csv_path",outcome="ok"} 1`) {
		t.Fatalf("expected invocation counter in scrape, got:\n%s", text)
	}
}
