package model

// Frequency is how often an income or expense recurs.
type Frequency string

// Recurrence frequencies accepted by the backend.
const (
	FrequencyDaily      Frequency = "Daily"
	FrequencyWeekly     Frequency = "Weekly"
	FrequencyBiWeekly   Frequency = "BiWeekly"
	FrequencyMonthly    Frequency = "Monthly"
	FrequencyQuarterly  Frequency = "Quarterly"
	FrequencyHalfYearly Frequency = "HalfYearly"
	FrequencyAnnual     Frequency = "Annual"
)

// Frequencies lists every frequency in display order.
var Frequencies = []Frequency{
	FrequencyDaily,
	FrequencyWeekly,
	FrequencyBiWeekly,
	FrequencyMonthly,
	FrequencyQuarterly,
	FrequencyHalfYearly,
	FrequencyAnnual,
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	for _, known := range Frequencies {
		if f == known {
			return true
		}
	}
	return false
}

// Label returns the human form, e.g. "Bi-Weekly".
func (f Frequency) Label() string {
	switch f {
	case FrequencyBiWeekly:
		return "Bi-Weekly"
	case FrequencyHalfYearly:
		return "Half-Yearly"
	default:
		return string(f)
	}
}
