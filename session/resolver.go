// Package session decides which attendance window (morning/afternoon) a
// moment falls into, in the school's canonical timezone. All thresholds are
// configuration; nothing here looks at server-local time.
package session

import (
	"fmt"
	"time"

	"github.com/jan112121/attendance-backend/config"
	"github.com/jan112121/attendance-backend/models"
)

// Times are the eight window boundaries as HH:MM strings.
type Times struct {
	MorningOpen            string
	MorningLateAfter       string
	MorningTimeoutEarliest string
	MorningClose           string

	AfternoonOpen            string
	AfternoonLateAfter       string
	AfternoonTimeoutEarliest string
	AfternoonClose           string
}

// Window is the resolved session for a timestamp, with its thresholds as
// absolute moments on that timestamp's date.
type Window struct {
	Session     string
	LateAfter   time.Time // time-in at/after this is late
	EarliestOut time.Time // time-out before this is rejected
	Close       time.Time
}

type bounds struct {
	open, lateAfter, earliestOut, close int // minutes of day
}

type Resolver struct {
	loc       *time.Location
	morning   bounds
	afternoon bounds
}

func FromConfig(cfg *config.Config) (*Resolver, error) {
	return New(cfg.Location(), Times{
		MorningOpen:            cfg.MorningOpen,
		MorningLateAfter:       cfg.MorningLateAfter,
		MorningTimeoutEarliest: cfg.MorningTimeoutEarliest,
		MorningClose:           cfg.MorningClose,

		AfternoonOpen:            cfg.AfternoonOpen,
		AfternoonLateAfter:       cfg.AfternoonLateAfter,
		AfternoonTimeoutEarliest: cfg.AfternoonTimeoutEarliest,
		AfternoonClose:           cfg.AfternoonClose,
	})
}

func New(loc *time.Location, t Times) (*Resolver, error) {
	m, err := parseBounds("morning", t.MorningOpen, t.MorningLateAfter, t.MorningTimeoutEarliest, t.MorningClose)
	if err != nil {
		return nil, err
	}
	a, err := parseBounds("afternoon", t.AfternoonOpen, t.AfternoonLateAfter, t.AfternoonTimeoutEarliest, t.AfternoonClose)
	if err != nil {
		return nil, err
	}
	if m.close > a.open {
		return nil, fmt.Errorf("session windows overlap: morning closes %s after afternoon opens %s", t.MorningClose, t.AfternoonOpen)
	}
	return &Resolver{loc: loc, morning: m, afternoon: a}, nil
}

func parseBounds(name, open, lateAfter, earliestOut, close string) (bounds, error) {
	var b bounds
	var err error
	if b.open, err = parseHHMM(open); err != nil {
		return b, fmt.Errorf("%s open: %w", name, err)
	}
	if b.lateAfter, err = parseHHMM(lateAfter); err != nil {
		return b, fmt.Errorf("%s late_after: %w", name, err)
	}
	if b.earliestOut, err = parseHHMM(earliestOut); err != nil {
		return b, fmt.Errorf("%s timeout_earliest: %w", name, err)
	}
	if b.close, err = parseHHMM(close); err != nil {
		return b, fmt.Errorf("%s close: %w", name, err)
	}
	if b.open > b.lateAfter || b.lateAfter > b.earliestOut || b.earliestOut > b.close {
		return b, fmt.Errorf("%s window out of order (%s / %s / %s / %s)", name, open, lateAfter, earliestOut, close)
	}
	return b, nil
}

func parseHHMM(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("bad HH:MM value %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// Resolve returns the window covering t, or ok=false when the school is
// closed (before morning open, between sessions, after afternoon close).
func (r *Resolver) Resolve(t time.Time) (Window, bool) {
	lt := t.In(r.loc)
	minute := lt.Hour()*60 + lt.Minute()

	switch {
	case minute >= r.morning.open && minute < r.morning.close:
		return r.window(lt, models.SessionMorning, r.morning), true
	case minute >= r.afternoon.open && minute < r.afternoon.close:
		return r.window(lt, models.SessionAfternoon, r.afternoon), true
	default:
		return Window{}, false
	}
}

func (r *Resolver) window(lt time.Time, name string, b bounds) Window {
	return Window{
		Session:     name,
		LateAfter:   r.at(lt, b.lateAfter),
		EarliestOut: r.at(lt, b.earliestOut),
		Close:       r.at(lt, b.close),
	}
}

func (r *Resolver) at(lt time.Time, minute int) time.Time {
	return time.Date(lt.Year(), lt.Month(), lt.Day(), minute/60, minute%60, 0, 0, r.loc)
}

func (r *Resolver) Location() *time.Location { return r.loc }

// Date formats t as the canonical-timezone attendance date (YYYY-MM-DD).
func (r *Resolver) Date(t time.Time) string {
	return t.In(r.loc).Format("2006-01-02")
}

// Clock formats t as the canonical-timezone wall time (HH:MM:SS).
func (r *Resolver) Clock(t time.Time) string {
	return t.In(r.loc).Format("15:04:05")
}
