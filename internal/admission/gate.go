// Package admission decides whether a candidate input file is eligible for
// processing. The decision is pure: no file is opened or modified here.
package admission

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpattn/dataqc/internal/ledger"
)

// Result classifies an admission decision.
type Result int

const (
	Admitted Result = iota
	SkipAlreadyProcessed
	SkipEmpty
	SkipInvalidExtension
)

// String returns a log-friendly name for the result.
func (r Result) String() string {
	switch r {
	case Admitted:
		return "admitted"
	case SkipAlreadyProcessed:
		return "skip_already_processed"
	case SkipEmpty:
		return "skip_empty"
	case SkipInvalidExtension:
		return "skip_invalid_extension"
	default:
		return fmt.Sprintf("result(%d)", int(r))
	}
}

// Gate filters candidate files against the ledger and basic file metadata.
type Gate struct {
	ledger ledger.Store
}

// NewGate creates a gate backed by the given ledger.
func NewGate(store ledger.Store) *Gate {
	return &Gate{ledger: store}
}

// Admit evaluates the admission checks in fixed order: ledger membership,
// then zero byte size, then the ".csv" suffix. Only the first matching skip
// reason is reported even when several apply.
func (g *Gate) Admit(ctx context.Context, path string) (Result, error) {
	fileName := filepath.Base(path)

	processed, err := g.ledger.HasProcessed(ctx, fileName)
	if err != nil {
		return Admitted, fmt.Errorf("failed to check ledger for %s: %w", fileName, err)
	}
	if processed {
		return SkipAlreadyProcessed, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Admitted, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Size() == 0 {
		return SkipEmpty, nil
	}

	if !strings.HasSuffix(path, ".csv") {
		return SkipInvalidExtension, nil
	}

	return Admitted, nil
}
