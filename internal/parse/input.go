// Package parse converts the short free-text answers caregivers type into
// typed values: decimals with a comma, "x" to skip, "HH:MM" clock times and
// day-first dates.
package parse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"babycare-backend/internal/model"
)

const (
	clockLayout    = "15:04"
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

// Skip is the answer that leaves an optional value empty.
const Skip = "x"

// Decimal parses a number written with either a dot or a comma ("2,5").
func Decimal(raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}

// OptionalDecimal is Decimal where "x" or an empty answer means no value.
func OptionalDecimal(raw string) (*float64, error) {
	if isSkip(raw) {
		return nil, nil
	}
	v, err := Decimal(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// OptionalText returns the trimmed text, or "" when the answer is "x".
func OptionalText(raw string) string {
	if isSkip(raw) {
		return ""
	}
	return strings.TrimSpace(raw)
}

func isSkip(raw string) bool {
	s := strings.TrimSpace(raw)
	return s == "" || strings.EqualFold(s, Skip)
}

// ClockOnDay places an "HH:MM" time on the calendar day of day in loc.
func ClockOnDay(raw string, day time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("use HH:MM: %q", raw)
	}
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// Date parses a "DD/MM/YYYY" date at midnight in loc.
func Date(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("use DD/MM/YYYY: %q", raw)
	}
	return t, nil
}

// DateTime parses a "DD/MM/YYYY HH:MM" timestamp in loc.
func DateTime(raw string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateTimeLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("use DD/MM/YYYY HH:MM: %q", raw)
	}
	return t, nil
}

// Time accepts "HH:MM" (on the day of now), "DD/MM/YYYY HH:MM" or RFC 3339.
// An empty answer returns the zero time.
func Time(raw string, now time.Time, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(raw)
	switch {
	case s == "":
		return time.Time{}, nil
	case len(s) <= len("15:04"):
		return ClockOnDay(s, now, loc)
	case strings.Contains(s, "/"):
		return DateTime(s, loc)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised time %q", raw)
	}
	return t.In(loc), nil
}

var wasteAliases = map[string]model.WasteType{
	"PEE":   model.WastePee,
	"PIPI":  model.WastePee,
	"POO":   model.WastePoo,
	"PUPU":  model.WastePoo,
	"BOTH":  model.WasteBoth,
	"AMBOS": model.WasteBoth,
}

// WasteType maps English and Spanish labels onto a waste type. Unknown
// labels read as pee.
func WasteType(raw string) model.WasteType {
	if w, ok := wasteAliases[strings.ToUpper(strings.TrimSpace(raw))]; ok {
		return w
	}
	return model.WastePee
}
