package domain

// Matches reports whether rec satisfies every clause of sel. The year clause
// is applied only when includeYear is set; the yearly trend leaves it out so
// the bars span all years.
func Matches(rec CrashRecord, sel Selection, includeYear bool) bool {
	if includeYear && sel.Year != "" && rec.Year != sel.Year {
		return false
	}
	if sel.Ward != "" && rec.Ward != sel.Ward {
		return false
	}
	if sel.FatalitiesOnly && rec.Fatal.Total() <= 0 {
		return false
	}
	if sel.PedestrianOnly && rec.TotalPedestrians <= 0 {
		return false
	}
	if sel.BicyclistOnly && rec.TotalBicycles <= 0 {
		return false
	}
	return matchesInjury(rec, sel.Injury)
}

// matchesInjury applies the coarse injury filter. Fatalities are ignored
// here, so a fatal-only crash passes "none".
func matchesInjury(rec CrashRecord, injury InjurySeverity) bool {
	major, minor := rec.Major.Total(), rec.Minor.Total()
	switch injury {
	case InjuryHigh:
		return major > 0
	case InjuryLow:
		return major == 0 && minor > 0
	case InjuryNone:
		return major == 0 && minor == 0
	default:
		return true
	}
}

// Filter returns the records matching sel, preserving order.
func Filter(records []CrashRecord, sel Selection, includeYear bool) []CrashRecord {
	out := make([]CrashRecord, 0, len(records))
	for i := range records {
		if Matches(records[i], sel, includeYear) {
			out = append(out, records[i])
		}
	}
	return out
}
