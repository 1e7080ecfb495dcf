package boundary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"suimu/internal/csvimport"
	"suimu/internal/logging"
)

// Invocation summarizes one served command for observers.
type Invocation struct {
	ID       string
	Command  string
	CSVPath  string
	OK       bool
	Kind     ErrorKind
	Message  string
	Records  int
	Rows     int
	Skipped  []csvimport.SkippedRow
	Started  time.Time
	Duration time.Duration
}

// Observer receives every completed invocation. Implementations must be safe
// for concurrent use and must not block for long.
type Observer interface {
	ObserveInvocation(ctx context.Context, inv Invocation)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, inv Invocation)

func (f ObserverFunc) ObserveInvocation(ctx context.Context, inv Invocation) { f(ctx, inv) }

type handler func(ctx context.Context, args json.RawMessage) (any, error)

// Service serves boundary commands with logging and observation.
type Service struct {
	logger    *slog.Logger
	observers []Observer
	commands  map[string]handler
	now       func() time.Time
}

// NewService builds a Service. A nil logger discards output.
func NewService(logger *slog.Logger, observers ...Observer) *Service {
	s := &Service{
		logger: logging.NewComponentLogger(logger, "boundary"),
		now:    time.Now,
	}
	for _, o := range observers {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
	s.commands = map[string]handler{
		CommandGetMaybeMusicByCSVPath: s.invokeGetMaybeMusic,
	}
	return s
}

// Commands lists the served command names in sorted order.
func (s *Service) Commands() []string {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke dispatches a command by name. Unknown commands and undecodable
// arguments are returned as errors; everything the command itself can fail
// with is carried inside the returned envelope.
func (s *Service) Invoke(ctx context.Context, command string, args json.RawMessage) (any, error) {
	h, ok := s.commands[command]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	return h(ctx, args)
}

func (s *Service) invokeGetMaybeMusic(ctx context.Context, raw json.RawMessage) (any, error) {
	var args GetMaybeMusicArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.CSVPath == nil {
		return nil, fmt.Errorf("%w: missing csvPath", ErrInvalidArgs)
	}
	result, _ := s.GetMaybeMusicByCSVPath(ctx, *args.CSVPath)
	return result, nil
}

func decodeArgs(raw json.RawMessage, dst any) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}

// GetMaybeMusicByCSVPath serves the CSV load command. The Outcome is nil on
// failure and carries per-row diagnostics on success.
func (s *Service) GetMaybeMusicByCSVPath(ctx context.Context, csvPath string) (MaybeMusicResult, *csvimport.Outcome) {
	id, ok := logging.RequestIDFromContext(ctx)
	if !ok {
		id = uuid.NewString()
		ctx = logging.WithRequestID(ctx, id)
	}
	ctx = logging.WithCommand(ctx, CommandGetMaybeMusicByCSVPath)
	logger := logging.WithContext(ctx, s.logger).With(logging.String(logging.FieldCSVPath, csvPath))

	started := s.now()
	result, outcome := load(csvPath)
	inv := Invocation{
		ID:       id,
		Command:  CommandGetMaybeMusicByCSVPath,
		CSVPath:  csvPath,
		OK:       result.OK,
		Kind:     result.Kind,
		Message:  result.Message,
		Started:  started,
		Duration: s.now().Sub(started),
	}
	if outcome != nil {
		inv.Records = len(outcome.Records)
		inv.Rows = outcome.Rows
		inv.Skipped = outcome.Skipped
	}

	s.logInvocation(logger, inv, outcome)
	for _, o := range s.observers {
		o.ObserveInvocation(ctx, inv)
	}
	return result, outcome
}

func (s *Service) logInvocation(logger *slog.Logger, inv Invocation, outcome *csvimport.Outcome) {
	if !inv.OK {
		logging.WarnWithContext(logger, "csv load failed", "csv_load_failed",
			logging.String("kind", string(inv.Kind)),
			logging.String("message", inv.Message),
			logging.String(logging.FieldErrorHint, hintFor(inv.Kind)),
			logging.String(logging.FieldImpact, "no records returned to caller"),
		)
		return
	}

	for _, row := range inv.Skipped {
		logger.Debug("row skipped",
			logging.Int("line", row.Line),
			logging.String("reason", row.Reason),
		)
	}
	if outcome != nil && len(outcome.MissingColumns) > 0 {
		logging.WarnWithContext(logger, "csv header lacks required columns", "csv_header_incomplete",
			logging.Any("missing_columns", outcome.MissingColumns),
			logging.String(logging.FieldErrorHint, "add the missing columns to the header row"),
			logging.String(logging.FieldImpact, "every data row was skipped"),
		)
	} else if len(inv.Skipped) > 0 {
		logging.WarnWithContext(logger, "csv rows skipped", "csv_rows_skipped",
			logging.Int("skipped", len(inv.Skipped)),
			logging.Int("rows", inv.Rows),
			logging.Int("first_line", inv.Skipped[0].Line),
			logging.String(logging.FieldErrorHint, "set SUIMU_LOG_LEVEL=debug to list each skipped row"),
			logging.String(logging.FieldImpact, fmt.Sprintf("%d of %d rows missing from result", len(inv.Skipped), inv.Rows)),
		)
	}
	logger.Info("csv loaded",
		logging.String(logging.FieldEventType, "csv_loaded"),
		logging.Int("records", inv.Records),
		logging.Int("rows", inv.Rows),
		logging.Duration("duration", inv.Duration),
	)
}

func hintFor(kind ErrorKind) string {
	switch kind {
	case KindNotFound:
		return "check the path points at an existing CSV file"
	default:
		return "check file permissions and that the file is UTF-8 text"
	}
}
