package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/sla-sentinel/internal/artifact"
	"github.com/Veraticus/sla-sentinel/internal/calendar"
	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/Veraticus/sla-sentinel/internal/config"
	"github.com/Veraticus/sla-sentinel/internal/predict"
	"github.com/Veraticus/sla-sentinel/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

var envKeyReplacer = strings.NewReplacer(".", "_")

// loadSettings reads the typed configuration from the global viper instance.
func loadSettings() (*config.Settings, error) {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("Invalid configuration", err)
	}
	return settings, nil
}

// initStorage opens the ticket database and brings its schema up to date.
func initStorage(ctx context.Context, settings *config.Settings) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadCalendar builds the working-day calendar. A missing or broken holiday
// file only costs holiday detection, so it is reported and not returned.
func loadCalendar(settings *config.Settings) *calendar.Resolver {
	resolver, err := calendar.Load(settings.HolidaysFile, settings.Country, time.Now().In(settings.Location))
	if err != nil {
		if errors.Is(err, calendar.ErrNoHolidaySource) {
			slog.Warn("No holiday file configured, only weekends count as days off",
				"country", settings.Country)
		} else {
			slog.Warn("Holiday data unavailable, only weekends count as days off",
				"file", settings.HolidaysFile,
				"error", err)
		}
	}
	return resolver
}

// loadBundle loads the trained artifacts, turning a missing bundle into a
// message that tells the operator what to do.
func loadBundle(settings *config.Settings) (*artifact.Bundle, error) {
	bundle, err := artifact.Load(settings.ArtifactsDir)
	if err != nil {
		var missing *artifact.MissingError
		if errors.As(err, &missing) {
			return nil, common.NewUserError(
				fmt.Sprintf("Model artifacts not found in %s; set artifacts.dir or SENTINEL_ARTIFACTS_DIR", settings.ArtifactsDir), err)
		}
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}
	return bundle, nil
}

// initPredictor loads everything a prediction needs. reg may be nil.
func initPredictor(settings *config.Settings, reg prometheus.Registerer) (*predict.Predictor, error) {
	bundle, err := loadBundle(settings)
	if err != nil {
		return nil, err
	}

	var metrics *predict.Metrics
	if reg != nil {
		metrics = predict.NewMetrics(reg)
	}

	return predict.New(bundle, predict.Options{
		Calendar:         loadCalendar(settings),
		Location:         settings.Location,
		Metrics:          metrics,
		OverridePriority: settings.OverridePriority,
	})
}

// requester names who asked for a prediction.
func requester(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "anonymous"
}

// requestSource identifies the machine the prediction was served from.
func requestSource() string {
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
