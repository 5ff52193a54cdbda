package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/logging"
	"github.com/jonathan/talent-pool/internal/observability"
	"github.com/jonathan/talent-pool/internal/types"
	"github.com/spf13/cobra"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute and persist profile scores",
	Long:  "Recomputes profile scores for the given job seekers, or for all job seekers up to --limit, and persists each result.",
	RunE:  runRecompute,
}

var (
	recomputeIDs   []string
	recomputeLimit int
	recomputeJSON  bool
)

func init() {
	recomputeCmd.Flags().StringSliceVar(&recomputeIDs, "ids", nil, "Candidate IDs to recompute (comma separated)")
	recomputeCmd.Flags().IntVarP(&recomputeLimit, "limit", "l", 0, "Maximum number of candidates (default: RECOMPUTE_DEFAULT_LIMIT)")
	recomputeCmd.Flags().BoolVar(&recomputeJSON, "json", false, "Print the API response JSON instead of a summary")
	rootCmd.AddCommand(recomputeCmd)
}

func runRecompute(cmd *cobra.Command, _ []string) error {
	ids, err := parseIDs(recomputeIDs)
	if err != nil {
		return err
	}
	req := types.RecomputeRequest{CandidateIDs: ids, Limit: recomputeLimit}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	cfg, err := loadServiceConfig()
	if err != nil {
		return err
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Output: cmd.ErrOrStderr()})

	ctx := cmd.Context()
	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	driver, _, err := newDriver(st, cfg, logger)
	if err != nil {
		return err
	}

	result, err := driver.Recompute(ctx, req)
	if err != nil {
		return err
	}

	if recomputeJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result.Response())
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintRecomputeResult(result)
	return nil
}

// parseIDs parses candidate IDs, ignoring blanks and duplicates.
func parseIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	seen := make(map[uuid.UUID]struct{}, len(raw))
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("invalid candidate ID %q: %w", s, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
