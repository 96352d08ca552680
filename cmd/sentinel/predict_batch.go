package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/sla-sentinel/internal/cli"
	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/Veraticus/sla-sentinel/internal/config"
	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/ticketcsv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

// Batch output formats.
const (
	formatJSONL = "jsonl"
	formatCSV   = "csv"
)

func predictBatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict-batch <requests.csv>",
		Short: "Predict SLA outcomes for every ticket in a CSV file",
		Long: `Run predictions for a file of tickets. The file needs open_date and due_date
columns; priority, category, item, sub_category and an id or number column
are optional.

Predictions run concurrently (--parallel, default prediction.parallel) and
results are written in input order as JSON lines or CSV. Use "-" to read
from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: runPredictBatch,
	}

	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().String("format", "", "Output format: jsonl or csv (default: from the output extension, else jsonl)")
	cmd.Flags().IntP("parallel", "p", 0, "Concurrent predictions")
	cmd.Flags().String("metrics-file", "", "Write prediction metrics in Prometheus text format to this file")
	cmd.Flags().Bool("log", false, "Also write every prediction to the audit log")
	cmd.Flags().String("user", "", "Name recorded in the audit log (default: $USER)")

	_ = viper.BindPFlag("prediction.parallel", cmd.Flags().Lookup("parallel"))

	return cmd
}

// batchResult is the outcome for one request row. Done is false when the
// batch was interrupted before the row ran.
type batchResult struct {
	Row      ticketcsv.RequestRow
	Response model.PredictionResponse
	Done     bool
}

// batchPredictor is the part of predict.Predictor a batch needs.
type batchPredictor interface {
	Predict(ctx context.Context, req model.PredictionRequest) model.PredictionResponse
}

// runBatch predicts every row with at most parallel concurrent predictions.
// Results keep the input order. Rows not started before ctx is canceled are
// left undone.
func runBatch(ctx context.Context, p batchPredictor, rows []ticketcsv.RequestRow, parallel int, bar *progressbar.ProgressBar) []batchResult {
	results := make([]batchResult, len(rows))

	g := new(errgroup.Group)
	g.SetLimit(parallel)
	for i, row := range rows {
		i, row := i, row
		results[i].Row = row
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			results[i].Response = p.Predict(ctx, row.Request)
			results[i].Done = true
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait() // failures are carried in each response

	return results
}

func runPredictBatch(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	writeLog, _ := cmd.Flags().GetBool("log")
	user, _ := cmd.Flags().GetString("user")

	format, err := resolveFormat(format, output)
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	rows, err := readRequestFile(cmd.InOrStdin(), args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		slog.Warn("No requests to predict", "file", args[0])
		return nil
	}

	registry := prometheus.NewRegistry()
	predictor, err := initPredictor(settings, registry)
	if err != nil {
		return err
	}

	kept := "Completed predictions are still written"
	if output != "" {
		kept += " to " + output
	}
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), kept)

	slog.Info("Running predictions",
		"requests", len(rows),
		"parallel", settings.Parallel,
		"format", format)

	bar := cli.NewProgressBar(cmd.ErrOrStderr(), len(rows), "Predicting")
	results := runBatch(ctx, predictor, rows, settings.Parallel, bar)
	_ = bar.Finish()

	summary, err := writeBatchOutput(cmd.OutOrStdout(), output, format, results)
	if err != nil {
		return err
	}

	if writeLog {
		if err := logBatch(cmd.Context(), settings, requester(user), results); err != nil {
			return err
		}
	}

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, registry); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
		slog.Info("Wrote prediction metrics", "file", metricsFile)
	}

	slog.Info(cli.FormatSuccess("Batch prediction complete"),
		"predicted", summary.done,
		"violated", summary.violated,
		"errors", summary.failed,
		"skipped", len(results)-summary.done)

	if handler.WasInterrupted() {
		return common.NewUserError("Batch prediction interrupted", context.Canceled)
	}
	return nil
}

func resolveFormat(format, output string) (string, error) {
	format = strings.ToLower(format)
	if format == "" {
		if strings.EqualFold(filepath.Ext(output), ".csv") {
			return formatCSV, nil
		}
		return formatJSONL, nil
	}
	if format != formatJSONL && format != formatCSV {
		return "", common.NewUserError(fmt.Sprintf("Unknown output format %q (use jsonl or csv)", format), nil)
	}
	return format, nil
}

func readRequestFile(stdin io.Reader, path string) ([]ticketcsv.RequestRow, error) {
	if path == "-" {
		return ticketcsv.ReadRequests(stdin)
	}

	f, err := os.Open(path) //nolint:gosec // path is an explicit CLI argument
	if err != nil {
		return nil, fmt.Errorf("failed to open request file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := ticketcsv.ReadRequests(f)
	if err != nil {
		return nil, common.NewUserError("Unable to read request file "+path, err)
	}
	return rows, nil
}

type batchSummary struct {
	done     int
	violated int
	failed   int
}

// jsonlResult is one line of JSON-lines batch output.
type jsonlResult struct {
	model.PredictionResponse
	ID string `json:"id"`
}

func writeBatchOutput(stdout io.Writer, output, format string, results []batchResult) (summary batchSummary, err error) {
	w := stdout
	if output != "" {
		f, createErr := os.Create(output) //nolint:gosec // path is an explicit CLI flag
		if createErr != nil {
			return summary, fmt.Errorf("failed to create output file: %w", createErr)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("failed to close output file: %w", closeErr)
			}
		}()
		w = f
	}

	var csvOut *ticketcsv.ResultWriter
	var jsonOut *json.Encoder
	if format == formatCSV {
		csvOut = ticketcsv.NewResultWriter(w)
	} else {
		jsonOut = json.NewEncoder(w)
	}

	for _, r := range results {
		if !r.Done {
			continue
		}
		summary.done++
		switch {
		case !r.Response.OK():
			summary.failed++
		case r.Response.Violated:
			summary.violated++
		}

		if csvOut != nil {
			err = csvOut.Write(r.Row.ID, r.Response)
		} else {
			err = jsonOut.Encode(jsonlResult{ID: r.Row.ID, PredictionResponse: r.Response})
		}
		if err != nil {
			return summary, fmt.Errorf("failed to write result for %s: %w", r.Row.ID, err)
		}
	}

	if csvOut != nil {
		if err := csvOut.Flush(); err != nil {
			return summary, fmt.Errorf("failed to flush results: %w", err)
		}
	}
	return summary, nil
}

func logBatch(ctx context.Context, settings *config.Settings, user string, results []batchResult) error {
	store, err := initStorage(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	recorded := 0
	for _, r := range results {
		if !r.Done {
			continue
		}
		if err := recordPrediction(ctx, store, user, r.Row.Request, r.Response); err != nil {
			return err
		}
		recorded++
	}
	slog.Info("Recorded batch predictions in the audit log", "entries", recorded)
	return nil
}
