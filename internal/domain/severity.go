package domain

// Severity is a crash's tier in the severity donut.
type Severity string

const (
	SeverityFatal Severity = "Fatal"
	SeverityMajor Severity = "Major"
	SeverityMinor Severity = "Minor"
	SeverityNone  Severity = "None"
)

// Severities lists the tiers in priority order.
var Severities = []Severity{SeverityFatal, SeverityMajor, SeverityMinor, SeverityNone}

// Classify returns the first tier that applies: Fatal, then Major, then Minor, else None.
func Classify(rec CrashRecord) Severity {
	switch {
	case rec.Fatal.Total() > 0:
		return SeverityFatal
	case rec.Major.Total() > 0:
		return SeverityMajor
	case rec.Minor.Total() > 0:
		return SeverityMinor
	default:
		return SeverityNone
	}
}
