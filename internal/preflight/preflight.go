package preflight

import (
	"context"
	"path/filepath"

	"suimu/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the checks that apply to cfg. The HTTP bind check only
// runs when the HTTP transport is enabled; the journal check only when
// history is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}
	results := []Result{
		CheckDirectoryOrCreatable("Runtime directory", cfg.Paths.RuntimeDir),
		CheckSocketPath(cfg.Paths.SocketPath),
	}
	if cfg.History.Enabled {
		results = append(results, CheckDirectoryOrCreatable("History directory", filepath.Dir(cfg.History.Path)))
	}
	if cfg.Server.HTTPBind != "" {
		results = append(results, CheckListenAddress(ctx, "HTTP bind", cfg.Server.HTTPBind))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
