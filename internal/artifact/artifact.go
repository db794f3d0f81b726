// Package artifact implements the strategy artifact (spec.md §6): the
// persisted, versioned form of a trained information-set store. Grounded
// on the teacher's sdk/solver/checkpoint.go (write-to-temp + atomic
// rename, JSON snapshot, version field checked on load), generalized from
// the teacher's checkpoint-only use to the spec's published artifact
// schema: a header plus a keyed {actions, regret_sum, strategy_sum} map.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lox/cfr-holdem-solver/internal/solvererr"
	"github.com/lox/cfr-holdem-solver/internal/store"
)

const formatVersion = 1

// Header is the artifact's top-level metadata (spec.md §6).
type Header struct {
	Version             int       `json:"version"`
	TrainedIterations   int       `json:"trained_iterations"`
	Timestamp           time.Time `json:"timestamp"`
	Variant             string    `json:"variant"`
	AbstractionChecksum uint64    `json:"abstraction_checksum"`
	LinearAveraging     bool      `json:"linear_averaging"`
}

// Entry is one information set's persisted record (spec.md §6).
type Entry struct {
	Actions     []string  `json:"actions"`
	RegretSum   []float64 `json:"regret_sum"`
	StrategySum []float64 `json:"strategy_sum"`
}

// AverageStrategy normalizes the entry's strategy_sum into the published
// recommendation, using the same rule the live InfoSet does.
func (e Entry) AverageStrategy() []float64 {
	return store.NormalizeStrategySum(e.StrategySum)
}

// Artifact is the full logical schema: header plus the keyed info-set map.
type Artifact struct {
	Header  Header           `json:"header"`
	Entries map[string]Entry `json:"entries"`
}

// BuildFromTable snapshots table into an Artifact under the given header.
// Header.Timestamp and Header.Version are stamped here, overriding
// whatever the caller passed in those two fields.
func BuildFromTable(table *store.Table, header Header, now time.Time) Artifact {
	header.Version = formatVersion
	header.Timestamp = now
	snap := table.Snapshot()
	entries := make(map[string]Entry, len(snap))
	for key, infoSet := range snap {
		entries[key] = Entry{
			Actions:     infoSet.Actions(),
			RegretSum:   infoSet.RegretSum(),
			StrategySum: infoSet.StrategySum(),
		}
	}
	return Artifact{Header: header, Entries: entries}
}

// RestoreTable rebuilds a store.Table from a, for resuming training from a
// checkpoint (spec.md §4.6's "Batches are additive: regrets and strategy
// sums persist").
func (a Artifact) RestoreTable() *store.Table {
	table := store.New()
	for key, entry := range a.Entries {
		table.Restore(key, entry.Actions, entry.RegretSum, entry.StrategySum)
	}
	return table
}

// Save writes a to path via write-to-temp-then-rename (spec.md §4.5 /
// §6's "written via write-to-temp + atomic rename").
func Save(path string, a Artifact) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &solvererr.ArtifactError{Path: path, Err: fmt.Errorf("create artifact dir: %w", err)}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &solvererr.ArtifactError{Path: path, Err: fmt.Errorf("create temp file: %w", err)}
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &solvererr.ArtifactError{Path: path, Err: fmt.Errorf("encode artifact: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &solvererr.ArtifactError{Path: path, Err: fmt.Errorf("close temp file: %w", err)}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return &solvererr.ArtifactError{Path: path, Err: fmt.Errorf("rename into place: %w", err)}
	}
	return nil
}

// Load reads and validates an artifact previously written by Save. A
// missing file, corrupt JSON, or version mismatch is surfaced as
// ArtifactError (spec.md §7), so the query service can fall back to its
// equity heuristic.
func Load(path string) (Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Artifact{}, &solvererr.ArtifactError{Path: path, Err: err}
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return Artifact{}, &solvererr.ArtifactError{Path: path, Err: fmt.Errorf("decode artifact: %w", err)}
	}
	if a.Header.Version != formatVersion {
		return Artifact{}, &solvererr.ArtifactError{Path: path, Err: fmt.Errorf("unsupported artifact version %d", a.Header.Version)}
	}
	return a, nil
}
