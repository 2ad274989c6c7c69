package injury

import "strings"

// Status is the closed vocabulary every raw status string is normalized into.
type Status string

const (
	StatusOut          Status = "out"
	StatusDoubtful     Status = "doubtful"
	StatusQuestionable Status = "questionable"
	StatusProbable     Status = "probable"
	StatusDayToDay     Status = "day-to-day"
	StatusIL10         Status = "il-10"
	StatusIL15         Status = "il-15"
	StatusIL60         Status = "il-60"
	StatusSuspended    Status = "suspended"
	StatusInjured      Status = "injured"
	StatusActive       Status = "active"
	StatusUnknown      Status = "unknown"
)

var statusAliases = map[string]Status{
	"out":                 StatusOut,
	"o":                   StatusOut,
	"doubtful":            StatusDoubtful,
	"d":                   StatusDoubtful,
	"questionable":        StatusQuestionable,
	"q":                   StatusQuestionable,
	"probable":            StatusProbable,
	"p":                   StatusProbable,
	"day-to-day":          StatusDayToDay,
	"dtd":                 StatusDayToDay,
	"day to day":          StatusDayToDay,
	"10-day il":           StatusIL10,
	"10-day injured list": StatusIL10,
	"il-10":               StatusIL10,
	"15-day il":           StatusIL15,
	"15-day injured list": StatusIL15,
	"il-15":               StatusIL15,
	"60-day il":           StatusIL60,
	"60-day injured list": StatusIL60,
	"il-60":               StatusIL60,
	"injured list":        StatusIL15,
	"il":                  StatusIL15,
	"suspended":           StatusSuspended,
	"susp":                StatusSuspended,
	"injured":             StatusInjured,
	"inj":                 StatusInjured,
	"active":              StatusActive,
}

// NormalizeStatus maps free text onto the status vocabulary. Unmatched input is unknown.
func NormalizeStatus(raw string) Status {
	if status, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return status
	}
	return StatusUnknown
}

func (s Status) Valid() bool {
	switch s {
	case StatusOut, StatusDoubtful, StatusQuestionable, StatusProbable, StatusDayToDay,
		StatusIL10, StatusIL15, StatusIL60, StatusSuspended, StatusInjured, StatusActive, StatusUnknown:
		return true
	default:
		return false
	}
}

func (s Status) String() string {
	return string(s)
}
