// Package calendar decides whether a date is a working day for the configured
// country. Holidays come from a YAML file loaded once at start-up; without it
// the resolver falls back to weekend-only detection and reports itself as
// degraded.
package calendar

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoHolidaySource indicates no holiday file was configured.
var ErrNoHolidaySource = errors.New("no holiday source configured")

const dateLayout = "2006-01-02"

// Holiday is one public holiday entry in the holiday file.
type Holiday struct {
	Date string `yaml:"date"`
	Name string `yaml:"name"`
}

// HolidayFile is the on-disk holiday data format.
//
//	country: ID
//	holidays:
//	  - date: 2026-08-17
//	    name: Independence Day
type HolidayFile struct {
	Country  string    `yaml:"country"`
	Holidays []Holiday `yaml:"holidays"`
}

// date is a calendar day with no time-of-day or zone component.
type date struct {
	year  int
	month time.Month
	day   int
}

func dateOf(t time.Time) date {
	y, m, d := t.Date()
	return date{year: y, month: m, day: d}
}

// Resolver answers non-working-day questions. It is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	holidays map[date]string
	country  string
	years    [2]int
	degraded bool
}

// NewWeekendOnly returns a resolver with an empty holiday set.
func NewWeekendOnly(country string) *Resolver {
	return &Resolver{
		holidays: map[date]string{},
		country:  strings.ToUpper(country),
		degraded: true,
	}
}

// New builds a resolver for the given country holding the holidays of the
// current and next calendar year relative to now.
func New(country string, now time.Time, holidays []Holiday) (*Resolver, error) {
	r := &Resolver{
		holidays: make(map[date]string),
		country:  strings.ToUpper(country),
		years:    [2]int{now.Year(), now.Year() + 1},
	}

	for _, h := range holidays {
		t, err := time.Parse(dateLayout, strings.TrimSpace(h.Date))
		if err != nil {
			return nil, fmt.Errorf("invalid holiday date %q: %w", h.Date, err)
		}
		if t.Year() != r.years[0] && t.Year() != r.years[1] {
			continue
		}
		r.holidays[dateOf(t)] = h.Name
	}

	return r, nil
}

// Parse decodes a holiday file and builds a resolver from it.
func Parse(rd io.Reader, country string, now time.Time) (*Resolver, error) {
	var file HolidayFile
	if err := yaml.NewDecoder(rd).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode holiday file: %w", err)
	}

	if file.Country != "" && !strings.EqualFold(file.Country, country) {
		return nil, fmt.Errorf("holiday file is for country %q, expected %q", file.Country, country)
	}

	return New(country, now, file.Holidays)
}

// Load reads the holiday file at path. Any failure to obtain holiday data
// degrades to a weekend-only resolver; the returned error explains why so the
// caller can surface the reduced accuracy.
func Load(path, country string, now time.Time) (*Resolver, error) {
	if path == "" {
		return NewWeekendOnly(country), ErrNoHolidaySource
	}

	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return NewWeekendOnly(country), fmt.Errorf("failed to open holiday file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r, err := Parse(f, country, now)
	if err != nil {
		return NewWeekendOnly(country), err
	}

	slog.Debug("Loaded holiday calendar",
		"country", r.country,
		"years", r.years,
		"holidays", len(r.holidays))

	return r, nil
}

// IsNonWorkingDay reports whether t falls on a Saturday, a Sunday, or a
// known public holiday.
func (r *Resolver) IsNonWorkingDay(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return true
	}
	_, ok := r.holidays[dateOf(t)]
	return ok
}

// HolidayName returns the name of the holiday on t, if any.
func (r *Resolver) HolidayName(t time.Time) (string, bool) {
	name, ok := r.holidays[dateOf(t)]
	return name, ok
}

// Degraded reports whether holiday detection is unavailable.
func (r *Resolver) Degraded() bool {
	return r.degraded
}

// Country returns the country code the resolver was built for.
func (r *Resolver) Country() string {
	return r.country
}

// HolidayCount returns the number of holidays known to the resolver.
func (r *Resolver) HolidayCount() int {
	return len(r.holidays)
}
