package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/okian/penrisk/internal/domain/capture"
	"github.com/okian/penrisk/internal/domain/model"
	"github.com/okian/penrisk/internal/domain/scoring"
	"github.com/okian/penrisk/internal/domain/types"
	"github.com/okian/penrisk/pkg/logger"
	"github.com/spf13/cobra"
)

var errNoInput = errors.New("no sessions in input")

// sessionFile is one session as stored on disk, with optional test scores.
type sessionFile struct {
	model.Session
	TestScores *model.TestScores `json:"testScores,omitempty"`
}

func newAssessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assess [file]",
		Short: "Assess sessions from a JSON file (or stdin) and print the results",
		Long: "assess reads a session object, or an array of them as written by generate, " +
			"and prints the risk result for each. With --events the input is an input-event " +
			"recording that is replayed through the capture layer first.",
		Args: cobra.MaximumNArgs(1),
		RunE: runAssess,
	}
	cmd.Flags().Bool("events", false, "Input holds event recordings instead of sessions")
	cmd.Flags().Bool("explain", false, "Print how each model slot was filled to stderr")
	return cmd
}

func runAssess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := initLogger(ctx, cfg); err != nil {
		return err
	}
	log := logger.Named("assess")
	svc, err := newService(cfg, log)
	if err != nil {
		return err
	}

	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	events, _ := cmd.Flags().GetBool("events")
	explain, _ := cmd.Flags().GetBool("explain")

	var inputs []sessionFile
	if events {
		var recs []capture.Recording
		if err := decodeOneOrMany(data, &recs); err != nil {
			return fmt.Errorf("decode recordings: %w", err)
		}
		opts := append(captureOptions(cfg.Capture),
			capture.WithLogger(log),
			capture.WithObserver(capture.ObserverFuncs{
				StrokeEnd: func(st model.Stroke) {
					log.Debug(ctx, "stroke replayed", logger.String("strokeID", st.ID), logger.Int("points", len(st.Points)))
				},
				Cancel: func() { log.Debug(ctx, "stroke cancelled") },
			}))
		for _, rec := range recs {
			s, err := capture.Replay(rec, opts...)
			if err != nil {
				return fmt.Errorf("replay %s: %w", rec.SessionID, err)
			}
			inputs = append(inputs, sessionFile{Session: s})
		}
	} else if err := decodeOneOrMany(data, &inputs); err != nil {
		return fmt.Errorf("decode sessions: %w", err)
	}
	if len(inputs) == 0 {
		return errNoInput
	}

	out := cmd.OutOrStdout()
	results := make([]types.Result, 0, len(inputs))
	for _, in := range inputs {
		a, err := svc.Assess(ctx, in.Session, in.TestScores)
		if err != nil {
			return fmt.Errorf("assess %s: %w", in.ID, err)
		}
		results = append(results, types.FromAssessment(&a))
		if explain {
			if err := writeTrace(cmd.ErrOrStderr(), in.ID, svc.Explain(in.Session)); err != nil {
				return err
			}
		}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", args[0], err)
	}
	return data, nil
}

// decodeOneOrMany accepts either a JSON object or an array of them.
func decodeOneOrMany[T any](data []byte, out *[]T) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, out)
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*out = append(*out, one)
	return nil
}

// writeTrace prints one row per model slot.
func writeTrace(w io.Writer, sessionID string, trace []scoring.SlotTrace) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "# %s\n", sessionID)
	_, _ = fmt.Fprintln(tw, "SLOT\tSOURCES\tCOMBINE\tRAW\tSCALED\tIMPORTANCE")
	for _, e := range trace {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.4f\t%.4f\t%.4f\n",
			e.Slot, strings.Join(e.Sources, ","), e.Combine, e.Raw, e.Scaled, e.Importance)
	}
	return tw.Flush()
}
