package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/sla-sentinel/internal/cli"
	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/Veraticus/sla-sentinel/internal/model"
	"github.com/Veraticus/sla-sentinel/internal/service"
	"github.com/spf13/cobra"
)

func predictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict whether a ticket will violate its SLA",
		Long: `Predict the SLA outcome of a single ticket from its open and due dates and,
optionally, its priority, category, item and sub category.

Critical tickets are always reported as violations. Every prediction is
written to the audit log unless --no-log is given.`,
		Example: `  sentinel predict --open "2024-01-01 09:00" --due "2024-01-04 09:00" --priority "1 - Critical"
  sentinel predict -i`,
		RunE: runPredict,
	}

	cmd.Flags().String("open", "", "Ticket open date (YYYY-MM-DD[ HH:MM[:SS]], optional zone)")
	cmd.Flags().String("due", "", "Ticket due date (YYYY-MM-DD[ HH:MM[:SS]], optional zone)")
	cmd.Flags().String("priority", "", "Priority tier, e.g. \"2 - High\"")
	cmd.Flags().String("category", "", "Ticket category")
	cmd.Flags().String("item", "", "Ticket item")
	cmd.Flags().String("sub-category", "", "Ticket sub category")
	cmd.Flags().BoolP("interactive", "i", false, "Prompt for any missing field")
	cmd.Flags().Bool("json", false, "Print the raw JSON response")
	cmd.Flags().Bool("no-log", false, "Do not write the prediction to the audit log")
	cmd.Flags().String("user", "", "Name recorded in the audit log (default: $USER)")

	return cmd
}

// requestFromFlags builds a request from the command flags. Categorical flags
// that were not given stay absent rather than empty.
func requestFromFlags(cmd *cobra.Command) model.PredictionRequest {
	req := model.PredictionRequest{}
	req.OpenDate, _ = cmd.Flags().GetString("open")
	req.DueDate, _ = cmd.Flags().GetString("due")

	optional := map[string]**string{
		"priority":     &req.Priority,
		"category":     &req.Category,
		"item":         &req.Item,
		"sub-category": &req.SubCategory,
	}
	for name, field := range optional {
		if !cmd.Flags().Changed(name) {
			continue
		}
		value, _ := cmd.Flags().GetString(name)
		*field = &value
	}
	return req
}

func runPredict(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	interactive, _ := cmd.Flags().GetBool("interactive")
	asJSON, _ := cmd.Flags().GetBool("json")
	noLog, _ := cmd.Flags().GetBool("no-log")
	user, _ := cmd.Flags().GetString("user")

	req := requestFromFlags(cmd)
	if interactive {
		prompted, err := cli.NewRequestPrompter(cmd.InOrStdin(), cmd.OutOrStdout()).Prompt(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to read ticket details: %w", err)
		}
		req = prompted
	}
	if req.OpenDate == "" || req.DueDate == "" {
		return common.NewUserError("Both --open and --due are required (or use -i)", nil)
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}
	predictor, err := initPredictor(settings, nil)
	if err != nil {
		return err
	}

	resp := predictor.Predict(ctx, req)

	if !noLog {
		store, err := initStorage(ctx, settings)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				slog.Error("Failed to close storage", "error", closeErr)
			}
		}()
		if err := recordPrediction(ctx, store, requester(user), req, resp); err != nil {
			return err
		}
	}

	if err := writePrediction(cmd.OutOrStdout(), resp, asJSON); err != nil {
		return err
	}

	if !resp.OK() {
		return common.NewUserError("Prediction failed", errors.New(resp.Message))
	}
	return nil
}

// recordPrediction appends an audit entry for one served prediction.
func recordPrediction(ctx context.Context, store service.Storage, user string, req model.PredictionRequest, resp model.PredictionResponse) error {
	entry := &model.PredictionLog{
		RequestedBy: user,
		Source:      requestSource(),
		Request:     req,
		Response:    resp,
	}
	if err := store.SavePredictionLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to write prediction log: %w", err)
	}
	common.LogDebug("Recorded prediction", common.Fields{"id": entry.ID, "requested_by": user, "status": resp.Status})
	return nil
}

func writePrediction(w io.Writer, resp model.PredictionResponse, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		return nil
	}

	if _, err := fmt.Fprintln(w, cli.RenderPrediction(resp)); err != nil {
		return fmt.Errorf("failed to write prediction: %w", err)
	}
	return nil
}
