package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/logging"
	"github.com/jonathan/talent-pool/internal/observability"
	"github.com/jonathan/talent-pool/internal/schemas"
	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:   "score <candidate-id>",
	Short: "Show a candidate's profile score breakdown",
	Long:  "Computes a candidate's profile score from current data without persisting it, unless --save is given.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScore,
}

var (
	scoreValidate bool
	scoreSave     bool
	scoreJSON     bool
)

func init() {
	scoreCmd.Flags().BoolVar(&scoreValidate, "validate", false, "Validate the breakdown against its JSON schema")
	scoreCmd.Flags().BoolVar(&scoreSave, "save", false, "Persist the computed score")
	scoreCmd.Flags().BoolVar(&scoreJSON, "json", false, "Print the breakdown as JSON")
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid candidate ID %q: %w", args[0], err)
	}

	cfg, err := loadServiceConfig()
	if err != nil {
		return err
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Output: cmd.ErrOrStderr()})

	ctx, cancel := commandContext(cmd.Context())
	defer cancel()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	driver, scorer, err := newDriver(st, cfg, logger)
	if err != nil {
		return err
	}

	candidate, err := st.GetCandidate(ctx, id)
	if err != nil {
		return err
	}
	if candidate == nil {
		return fmt.Errorf("candidate not found: %s", id)
	}

	breakdown, err := scorer.ComputeProfileScore(ctx, candidate)
	if err != nil {
		return err
	}

	if scoreValidate {
		validator, err := schemas.NewBreakdownValidator(scorer.Version())
		if err != nil {
			return err
		}
		if err := validator.ValidateBreakdown(breakdown); err != nil {
			return err
		}
	}

	if scoreJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(breakdown); err != nil {
			return err
		}
	} else {
		observability.NewPrinter(cmd.OutOrStdout()).PrintBreakdown(candidate, breakdown, scorer.Weights())
	}

	if scoreSave {
		update, err := driver.RecomputeOne(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to save score: %w", err)
		}
		logger.Info("score saved", "candidate_id", id, "score", update.ProfileScore)
	}
	return nil
}
