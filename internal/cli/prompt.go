package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/sla-sentinel/internal/model"
)

// RequestPrompter asks for the fields of a prediction request one by one.
type RequestPrompter struct {
	writer io.Writer
	reader *NonBlockingReader
}

// NewRequestPrompter creates a prompter reading answers from reader.
func NewRequestPrompter(reader io.Reader, writer io.Writer) *RequestPrompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &RequestPrompter{writer: writer, reader: NewNonBlockingReader(reader)}
}

// Prompt fills the empty fields of defaults interactively. Pressing enter
// keeps the shown default; categorical fields left empty stay absent.
func (p *RequestPrompter) Prompt(ctx context.Context, defaults model.PredictionRequest) (model.PredictionRequest, error) {
	if _, err := fmt.Fprintln(p.writer, FormatTitle("New ticket")); err != nil {
		return defaults, fmt.Errorf("failed to write title: %w", err)
	}

	req := defaults
	var err error

	if req.OpenDate, err = p.ask(ctx, "Open date (YYYY-MM-DD HH:MM)", req.OpenDate, true); err != nil {
		return defaults, err
	}
	if req.DueDate, err = p.ask(ctx, "Due date (YYYY-MM-DD HH:MM)", req.DueDate, true); err != nil {
		return defaults, err
	}

	optional := []struct {
		field **string
		label string
	}{
		{&req.Priority, "Priority (e.g. 1 - Critical)"},
		{&req.Category, "Category"},
		{&req.Item, "Item"},
		{&req.SubCategory, "Sub category"},
	}
	for _, o := range optional {
		current := ""
		if *o.field != nil {
			current = **o.field
		}
		answer, err := p.ask(ctx, o.label, current, false)
		if err != nil {
			return defaults, err
		}
		if answer == "" {
			*o.field = nil
			continue
		}
		value := answer
		*o.field = &value
	}

	return req, nil
}

func (p *RequestPrompter) ask(ctx context.Context, label, current string, required bool) (string, error) {
	for {
		prompt := label
		if current != "" {
			prompt += SubtleStyle.Render(" [" + current + "]")
		}
		if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			return "", err
		}
		if line == "" {
			line = current
		}
		line = strings.TrimSpace(line)
		if line != "" || !required {
			return line, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatWarning(label+" is required")); err != nil {
			return "", fmt.Errorf("failed to write warning: %w", err)
		}
	}
}
