package boundary_test

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"suimu/internal/boundary"
	"suimu/internal/logging"
	"suimu/internal/testsupport"
)

func TestGetMaybeMusicByCSVPathSuccess(t *testing.T) {
	path := testsupport.SampleCSV(t)

	result := boundary.GetMaybeMusicByCSVPath(path)
	records, ok := result.Value()
	if !ok {
		t.Fatalf("expected success, got %+v", result)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[2].VideoType != "BILIBILI" || records[2].Comment != "live, encore" {
		t.Fatalf("unexpected third record: %+v", records[2])
	}
	if result.Err() != nil {
		t.Fatalf("Err() on success = %v", result.Err())
	}
}

func TestSuccessEnvelopeShape(t *testing.T) {
	path := testsupport.WriteCSV(t,
		testsupport.SampleHeader,
		"2021-06-25T22:30:00+09:00,YOUTUBE,ZfDYRy17CBY,,,,Bluerose,,,",
	)

	data, err := json.Marshal(boundary.GetMaybeMusicByCSVPath(path))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"ok":true,"object":[{"datetime":"2021-06-25T22:30:00+09:00","video_type":"YOUTUBE","video_id":"ZfDYRy17CBY","title":"Bluerose","artist":"","performer":"","comment":""}]}`
	if string(data) != want {
		t.Fatalf("envelope mismatch\n got: %s\nwant: %s", data, want)
	}
}

func TestHeaderOnlyFileIsEmptyList(t *testing.T) {
	path := testsupport.WriteCSV(t, testsupport.SampleHeader)

	data, err := json.Marshal(boundary.GetMaybeMusicByCSVPath(path))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"ok":true,"object":[]}` {
		t.Fatalf("expected empty list, got %s", data)
	}
}

func TestMissingFileIsNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	result := boundary.GetMaybeMusicByCSVPath(path)
	if result.OK || result.Object != nil {
		t.Fatalf("expected failure without object, got %+v", result)
	}
	if result.Kind != boundary.KindNotFound {
		t.Fatalf("kind = %s, want NotFound", result.Kind)
	}
	if !strings.Contains(result.Message, "missing.csv") {
		t.Fatalf("message should name the path: %q", result.Message)
	}

	var invErr *boundary.InvocationError
	if !errors.As(result.Err(), &invErr) || invErr.Kind != boundary.KindNotFound {
		t.Fatalf("Err() = %v", result.Err())
	}

	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, has := wire["object"]; has {
		t.Fatalf("failure must not carry object: %s", data)
	}
	if wire["ok"] != false || wire["kind"] != "NotFound" {
		t.Fatalf("unexpected failure envelope: %s", data)
	}
}

func TestInvalidUTF8IsReadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	testsupport.WriteFile(t, path, []byte("datetime,video_type,video_id\n\xff\xfe\xfd,YOUTUBE,x\n"))

	result := boundary.GetMaybeMusicByCSVPath(path)
	if result.OK || result.Kind != boundary.KindReadError {
		t.Fatalf("expected ReadError, got %+v", result)
	}
}

func TestReadMaybeMusicFromStream(t *testing.T) {
	result, outcome := boundary.ReadMaybeMusic(strings.NewReader(
		testsupport.SampleHeader + "\n2021-01-01T00:00:00Z,YOUTUBE,abc,,,,t,,,\n,YOUTUBE,nodate,,,,t,,,\n"))
	records, ok := result.Value()
	if !ok || len(records) != 1 || records[0].VideoID != "abc" {
		t.Fatalf("unexpected result %+v", result)
	}
	if outcome == nil || len(outcome.Skipped) != 1 || outcome.Skipped[0].Line != 3 {
		t.Fatalf("unexpected outcome %+v", outcome)
	}

	result, outcome = boundary.ReadMaybeMusic(strings.NewReader("datetime\n\xff\xfe\xfd\n"))
	if result.OK || result.Kind != boundary.KindReadError || outcome != nil {
		t.Fatalf("expected ReadError without outcome, got %+v", result)
	}
	if !strings.Contains(result.Message, "failed to read input") {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestResultUnmarshalValidatesArms(t *testing.T) {
	cases := map[string]string{
		"success without object": `{"ok":true}`,
		"success with kind":      `{"ok":true,"object":[],"kind":"NotFound"}`,
		"failure with object":    `{"ok":false,"object":[],"kind":"NotFound","message":"x"}`,
		"failure without kind":   `{"ok":false,"message":"x"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			var r boundary.MaybeMusicResult
			err := json.Unmarshal([]byte(raw), &r)
			if !errors.Is(err, boundary.ErrMalformedEnvelope) {
				t.Fatalf("expected ErrMalformedEnvelope, got %v", err)
			}
		})
	}

	var ok boundary.MaybeMusicResult
	if err := json.Unmarshal([]byte(`{"ok":true,"object":[{"datetime":"d","video_type":"YOUTUBE","video_id":"v","status":0}]}`), &ok); err != nil {
		t.Fatalf("valid success rejected: %v", err)
	}
	records, _ := ok.Value()
	if len(records) != 1 || !records[0].Status.Present() || records[0].ClipStart.Present() {
		t.Fatalf("unexpected decoded records: %+v", records)
	}

	var failed boundary.MaybeMusicResult
	if err := json.Unmarshal([]byte(`{"ok":false,"kind":"ReadError","message":"boom"}`), &failed); err != nil {
		t.Fatalf("valid failure rejected: %v", err)
	}
	if failed.Kind != boundary.KindReadError || failed.Message != "boom" {
		t.Fatalf("unexpected decoded failure: %+v", failed)
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	path := testsupport.SampleCSV(t)
	original := boundary.GetMaybeMusicByCSVPath(path)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded boundary.MaybeMusicResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want, _ := original.Value()
	got, _ := decoded.Value()
	if len(got) != len(want) {
		t.Fatalf("record count changed: %d != %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("record %d changed:\n got %+v\nwant %+v", i, got[i], want[i])
		}
	}
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []boundary.Invocation
}

func (r *recordingObserver) ObserveInvocation(_ context.Context, inv boundary.Invocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, inv)
}

func TestServiceInvokeDispatches(t *testing.T) {
	obs := &recordingObserver{}
	svc := boundary.NewService(logging.NewNop(), obs)
	path := testsupport.WriteCSV(t,
		testsupport.SampleHeader,
		"2021-06-25T22:30:00+09:00,YOUTUBE,ZfDYRy17CBY,,,0,Bluerose,,,",
		",YOUTUBE,missing-datetime,,,0,x,,,",
	)
	args, _ := json.Marshal(map[string]string{"csvPath": path})

	ctx := logging.WithRequestID(context.Background(), "req-1")
	got, err := svc.Invoke(ctx, boundary.CommandGetMaybeMusicByCSVPath, args)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	result, ok := got.(boundary.MaybeMusicResult)
	if !ok {
		t.Fatalf("unexpected result type %T", got)
	}
	if records, ok := result.Value(); !ok || len(records) != 1 {
		t.Fatalf("expected one record, got %+v", result)
	}

	if len(obs.seen) != 1 {
		t.Fatalf("expected one observation, got %d", len(obs.seen))
	}
	inv := obs.seen[0]
	if inv.ID != "req-1" || inv.Command != boundary.CommandGetMaybeMusicByCSVPath || inv.CSVPath != path {
		t.Fatalf("unexpected invocation: %+v", inv)
	}
	if !inv.OK || inv.Records != 1 || inv.Rows != 2 || len(inv.Skipped) != 1 || inv.Skipped[0].Line != 3 {
		t.Fatalf("unexpected counts: %+v", inv)
	}
}

func TestServiceAssignsRequestID(t *testing.T) {
	obs := &recordingObserver{}
	svc := boundary.NewService(nil, obs)

	result, outcome := svc.GetMaybeMusicByCSVPath(context.Background(), filepath.Join(t.TempDir(), "none.csv"))
	if result.OK || outcome != nil {
		t.Fatalf("expected failure without outcome, got %+v %+v", result, outcome)
	}
	if len(obs.seen) != 1 || len(obs.seen[0].ID) != 36 {
		t.Fatalf("expected uuid request id, got %+v", obs.seen)
	}
	if obs.seen[0].Kind != boundary.KindNotFound {
		t.Fatalf("kind = %s", obs.seen[0].Kind)
	}
}

func TestServiceInvokeErrors(t *testing.T) {
	svc := boundary.NewService(nil)

	if _, err := svc.Invoke(context.Background(), "delete_everything", nil); !errors.Is(err, boundary.ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
	for _, raw := range []string{``, `null`, `{}`, `{"csv_path":"/tmp/x"}`, `[1,2]`, `{"csvPath":3}`} {
		if _, err := svc.Invoke(context.Background(), boundary.CommandGetMaybeMusicByCSVPath, json.RawMessage(raw)); !errors.Is(err, boundary.ErrInvalidArgs) {
			t.Fatalf("args %q: expected ErrInvalidArgs, got %v", raw, err)
		}
	}

	// An empty path is a valid argument that fails inside the envelope.
	got, err := svc.Invoke(context.Background(), boundary.CommandGetMaybeMusicByCSVPath, json.RawMessage(`{"csvPath":""}`))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if r := got.(boundary.MaybeMusicResult); r.OK || r.Kind != boundary.KindNotFound {
		t.Fatalf("expected NotFound envelope, got %+v", r)
	}
}

func TestServiceCommands(t *testing.T) {
	names := boundary.NewService(nil).Commands()
	if len(names) != 1 || names[0] != boundary.CommandGetMaybeMusicByCSVPath {
		t.Fatalf("unexpected commands: %v", names)
	}
}

func TestConcurrentInvocationsAgree(t *testing.T) {
	path := testsupport.SampleCSV(t)
	want, _ := boundary.GetMaybeMusicByCSVPath(path).Value()
	svc := boundary.NewService(nil, &recordingObserver{})

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for range 16 {
		wg.Go(func() {
			result, _ := svc.GetMaybeMusicByCSVPath(context.Background(), path)
			got, ok := result.Value()
			if !ok || len(got) != len(want) {
				errs <- "length mismatch"
				return
			}
			for i := range want {
				if got[i] != want[i] {
					errs <- "record mismatch"
					return
				}
			}
		})
	}
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}
