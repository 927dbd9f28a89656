// Package commands implements the ccdb subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/openccdb/ccdb/internal/config"
	"github.com/openccdb/ccdb/internal/provider"
	"github.com/openccdb/ccdb/pkg/ccdb"
)

// CommandContext bundles what every data command needs: a connected
// provider and a logger.
type CommandContext struct {
	Provider *provider.Provider
	Logger   *slog.Logger
}

// NewCommandContext connects a provider using the resolved
// configuration. The returned cleanup disconnects it.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cfg := config.Current()
	connection := ""
	if cfg != nil {
		connection = cfg.Connection
	}

	logger := slog.Default()
	p := provider.New(logger)
	// Connect falls back to CCDB_CONNECTION itself; an empty result
	// after both is a configuration error.
	if err := p.Connect(connection); err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		if err := p.Disconnect(); err != nil {
			logger.Warn("failed to disconnect", "error", err)
		}
	}
	return &CommandContext{Provider: p, Logger: logger}, cleanup, nil
}

// parseRunRange parses a "min-max" run range argument. An omitted max
// ("100-") extends the range to the maximum run number.
func parseRunRange(s string) (minRun, maxRun int64, err error) {
	const maxRunNumber = int64(2147483647)

	var dash int = -1
	for i := 1; i < len(s); i++ { // from 1: a leading '-' is a sign
		if s[i] == '-' {
			dash = i
			break
		}
	}
	if dash < 0 {
		if _, err := fmt.Sscanf(s, "%d", &minRun); err != nil {
			return 0, 0, fmt.Errorf("run range %q: %w", s, ccdb.ErrInvalidData)
		}
		return minRun, minRun, nil
	}

	if _, err := fmt.Sscanf(s[:dash], "%d", &minRun); err != nil {
		return 0, 0, fmt.Errorf("run range %q: %w", s, ccdb.ErrInvalidData)
	}
	rest := s[dash+1:]
	if rest == "" {
		return minRun, maxRunNumber, nil
	}
	if _, err := fmt.Sscanf(rest, "%d", &maxRun); err != nil {
		return 0, 0, fmt.Errorf("run range %q: %w", s, ccdb.ErrInvalidData)
	}
	if minRun > maxRun {
		return 0, 0, fmt.Errorf("run range %q has min above max: %w", s, ccdb.ErrInvalidData)
	}
	return minRun, maxRun, nil
}
