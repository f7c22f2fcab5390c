package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// InjurySeverity is the coarse injury filter offered next to the tier donut.
type InjurySeverity string

const (
	InjuryAll  InjurySeverity = "all"
	InjuryHigh InjurySeverity = "high"
	InjuryLow  InjurySeverity = "low"
	InjuryNone InjurySeverity = "none"
)

// ParseInjurySeverity validates a user-supplied injury filter. The empty
// string means "all".
func ParseInjurySeverity(s string) (InjurySeverity, error) {
	switch v := InjurySeverity(strings.ToLower(strings.TrimSpace(s))); v {
	case "", InjuryAll:
		return InjuryAll, nil
	case InjuryHigh, InjuryLow, InjuryNone:
		return v, nil
	default:
		return "", fmt.Errorf("invalid injury severity %q", s)
	}
}

// Selection is the analyst's current filter intent. Empty Year or Ward
// means no constraint on that field.
type Selection struct {
	Year           string         `json:"year"`
	Ward           string         `json:"ward"`
	Injury         InjurySeverity `json:"injury"`
	FatalitiesOnly bool           `json:"fatalities_only"`
	PedestrianOnly bool           `json:"pedestrian_only"`
	BicyclistOnly  bool           `json:"bicyclist_only"`
}

// Normalized returns a copy with an empty injury filter spelled out as "all".
func (s Selection) Normalized() Selection {
	if s.Injury == "" {
		s.Injury = InjuryAll
	}
	return s
}

// WithYear returns a copy constrained to the given year.
func (s Selection) WithYear(year string) Selection {
	s.Year = year
	return s
}

// Key renders the selection as a stable string, used to key published
// view snapshots.
func (s Selection) Key() string {
	s = s.Normalized()
	return strings.Join([]string{
		"year=" + s.Year,
		"ward=" + s.Ward,
		"injury=" + string(s.Injury),
		"fatal=" + strconv.FormatBool(s.FatalitiesOnly),
		"pedestrian=" + strconv.FormatBool(s.PedestrianOnly),
		"bicyclist=" + strconv.FormatBool(s.BicyclistOnly),
	}, "|")
}
