package match

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Kind distinguishes a single kickoff date from a multi-day sale period
type Kind int

const (
	Single Kind = iota
	Range
)

func (k Kind) String() string {
	if k == Range {
		return "range"
	}
	return "single"
}

// MarshalJSON writes the kind as its name
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON reads a kind written by MarshalJSON
func (k *Kind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "range":
		*k = Range
	case "single":
		*k = Single
	default:
		return fmt.Errorf("unknown date kind %q", s)
	}
	return nil
}

const (
	displayDate = "02.01.2006"
	displayTime = "15:04"

	// UnknownTime is shown when a kickoff cell has no "Uhr" time
	UnknownTime = "unbekannt"
)

var (
	datePattern    = regexp.MustCompile(`(\d{2})\.(\d{2})\.(\d{4}|\d{2})`)
	timePattern    = regexp.MustCompile(`(\d{2})[:.](\d{2}) Uhr`)
	preSalePattern = regexp.MustCompile(`Mitgl\.-VVK: (\d{2})\.(\d{2})\.(\d{4}|\d{2})(?: ab (\d{2}):(\d{2}))?`)
)

// DateExpr is the parsed kickoff cell. A Range keeps only its display text.
type DateExpr struct {
	Kind    Kind      `json:"kind"`
	Raw     string    `json:"raw"`
	Date    time.Time `json:"date,omitempty"`
	HasDate bool      `json:"has_date"`
	HasTime bool      `json:"has_time"`
}

// DateString returns the kickoff date as DD.MM.YYYY, or "" without a date.
func (d DateExpr) DateString() string {
	if !d.HasDate {
		return ""
	}
	return d.Date.Format(displayDate)
}

// TimeString returns the kickoff time as HH:MM, or "unbekannt" when the cell had none.
func (d DateExpr) TimeString() string {
	if !d.HasDate || !d.HasTime {
		return UnknownTime
	}
	return d.Date.Format(displayTime)
}

// ParseDateExpr classifies a kickoff cell. Two distinct dates make a Range;
// anything else is a Single built from the first date and an optional
// "HH:MM Uhr" time.
func ParseDateExpr(text string, loc *time.Location) DateExpr {
	if loc == nil {
		loc = Berlin
	}
	raw := NormalizeSpace(text)
	expr := DateExpr{Kind: Single, Raw: raw}

	found := datePattern.FindAllString(raw, -1)
	if len(found) == 2 && found[0] != found[1] {
		expr.Kind = Range
		return expr
	}

	m := datePattern.FindStringSubmatch(raw)
	if m == nil {
		return expr
	}

	hour, minute := 0, 0
	if tm := timePattern.FindStringSubmatch(raw); tm != nil {
		hour, _ = strconv.Atoi(tm[1])
		minute, _ = strconv.Atoi(tm[2])
		expr.HasTime = true
	}

	t, ok := buildTime(m[1], m[2], m[3], hour, minute, loc)
	if !ok {
		expr.HasTime = false
		return expr
	}
	expr.Date = t
	expr.HasDate = true
	return expr
}

// ParsePreSale reads the member pre-sale start from a status cell. Without an
// "ab HH:MM" suffix the rules' default time applies. It returns false when the
// label is missing or the date is not a real calendar date.
func (r Rules) ParsePreSale(text string) (time.Time, bool) {
	m := preSalePattern.FindStringSubmatch(NormalizeSpace(text))
	if m == nil {
		return time.Time{}, false
	}

	hour, minute := r.PreSaleHour, r.PreSaleMinute
	if m[4] != "" {
		hour, _ = strconv.Atoi(m[4])
		minute, _ = strconv.Atoi(m[5])
	}

	return buildTime(m[1], m[2], m[3], hour, minute, r.location())
}

// buildTime validates the components instead of letting time.Date normalize
// 31.02. into March.
func buildTime(day, month, year string, hour, minute int, loc *time.Location) (time.Time, bool) {
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	y = widenYear(y, len(year))

	if m < 1 || m > 12 || d < 1 || hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, false
	}

	t := time.Date(y, time.Month(m), d, hour, minute, 0, 0, loc)
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

// widenYear maps two-digit years onto 20YY
func widenYear(year, digits int) int {
	if digits == 2 {
		return 2000 + year
	}
	return year
}
