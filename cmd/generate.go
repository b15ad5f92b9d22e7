package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/okian/penrisk/internal/domain/capture"
	"github.com/okian/penrisk/internal/synthetic"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic drawing sessions as JSON",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	cmd.Flags().IntP("count", "n", 10, "Number of sessions")
	cmd.Flags().Uint64("seed", 1, "Generator seed")
	cmd.Flags().Float64("risk", -1, "Fixed risk in [0,1]; negative draws it per session")
	cmd.Flags().Bool("events", false, "Write raw event recordings instead of sessions")
	cmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	count, _ := cmd.Flags().GetInt("count")
	seed, _ := cmd.Flags().GetUint64("seed")
	risk, _ := cmd.Flags().GetFloat64("risk")
	events, _ := cmd.Flags().GetBool("events")
	output, _ := cmd.Flags().GetString("output")
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	if risk > 1 {
		return fmt.Errorf("risk must be at most 1, got %g", risk)
	}

	var opts []synthetic.Option
	if risk >= 0 {
		opts = append(opts, synthetic.WithRiskRange(risk, risk))
	}
	samples, err := synthetic.New(seed, opts...).Batch(count)
	if err != nil {
		return err
	}

	var payload any
	if events {
		recs := make([]capture.Recording, len(samples))
		for i, smp := range samples {
			recs[i] = smp.Recording
		}
		payload = recs
	} else {
		files := make([]sessionFile, len(samples))
		for i, smp := range samples {
			scores := smp.TestScores
			files[i] = sessionFile{Session: smp.Session, TestScores: &scores}
		}
		payload = files
	}

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("create %s: %w", output, err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
