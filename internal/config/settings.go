package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/sla-sentinel/internal/common"
	"github.com/spf13/viper"
)

// Defaults applied when a key is not set in the config file, environment, or flags.
const (
	DefaultDatabasePath     = "$HOME/.local/share/sentinel/sentinel.db"
	DefaultArtifactsDir     = "$HOME/.local/share/sentinel/artifacts"
	DefaultCountry          = "ID"
	DefaultTimezone         = "Asia/Jakarta"
	DefaultOverridePriority = "1 - critical"
	DefaultParallel         = 4
)

// Settings is the typed view of the sentinel configuration.
type Settings struct {
	Location         *time.Location
	DatabasePath     string
	ArtifactsDir     string
	HolidaysFile     string
	Country          string
	OverridePriority string
	LogLevel         string
	LogFormat        string
	Parallel         int
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("artifacts.dir", DefaultArtifactsDir)
	v.SetDefault("calendar.holidays_file", "")
	v.SetDefault("calendar.country", DefaultCountry)
	v.SetDefault("calendar.timezone", DefaultTimezone)
	v.SetDefault("prediction.override_priority", DefaultOverridePriority)
	v.SetDefault("prediction.parallel", DefaultParallel)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads Settings out of v, expanding paths and resolving the time zone.
func Load(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)

	tzName := v.GetString("calendar.timezone")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("%w: calendar.timezone %q: %v", common.ErrInvalidConfig, tzName, err)
	}

	parallel := v.GetInt("prediction.parallel")
	if parallel <= 0 {
		return nil, fmt.Errorf("%w: prediction.parallel must be positive, got %d", common.ErrInvalidConfig, parallel)
	}

	override := strings.ToLower(strings.TrimSpace(v.GetString("prediction.override_priority")))
	if override == "" {
		return nil, fmt.Errorf("%w: prediction.override_priority", common.ErrMissingConfig)
	}

	return &Settings{
		DatabasePath:     ExpandPath(v.GetString("database.path")),
		ArtifactsDir:     ExpandPath(v.GetString("artifacts.dir")),
		HolidaysFile:     ExpandPath(v.GetString("calendar.holidays_file")),
		Country:          strings.ToUpper(v.GetString("calendar.country")),
		Location:         loc,
		OverridePriority: override,
		Parallel:         parallel,
		LogLevel:         v.GetString("logging.level"),
		LogFormat:        v.GetString("logging.format"),
	}, nil
}
