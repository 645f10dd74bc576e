package form

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of date fields.
const DateLayout = "2006-01-02"

// Derivation computes one computed field from a fixed list of source fields.
type Derivation interface {
	Target() string
	Sources() []string
	Compute(get func(name string) string, now time.Time) string
}

// Age derives whole years elapsed since a date-of-birth field.
type Age struct {
	Into string
	From string
}

func (a Age) Target() string    { return a.Into }
func (a Age) Sources() []string { return []string{a.From} }

// Compute returns the age in years, or "" when the birth date is empty,
// unparseable or in the future.
func (a Age) Compute(get func(string) string, now time.Time) string {
	raw := strings.TrimSpace(get(a.From))
	if raw == "" {
		return ""
	}
	dob, err := time.Parse(DateLayout, raw)
	if err != nil {
		return ""
	}
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	if years < 0 {
		return ""
	}
	return strconv.Itoa(years)
}

// ScoreSum adds numeric sub-scores, counting only values within [Min, Max].
type ScoreSum struct {
	Into  string
	Parts []string
	Min   float64
	Max   float64
}

func (s ScoreSum) Target() string    { return s.Into }
func (s ScoreSum) Sources() []string { return s.Parts }

// Compute never fails: out-of-range or unparseable parts count as zero.
func (s ScoreSum) Compute(get func(string) string, _ time.Time) string {
	var total float64
	for _, part := range s.Parts {
		v, err := parseDecimal(get(part))
		if err != nil || math.IsNaN(v) || v < s.Min || v > s.Max {
			continue
		}
		total += v
	}
	return strconv.FormatFloat(total, 'f', -1, 64)
}

// parseDecimal parses a plain decimal number. Hex floats such as "0x1p1"
// are rejected.
func parseDecimal(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	digits := strings.TrimLeft(raw, "+-")
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, fmt.Errorf("not a decimal number: %q", raw)
	}
	return strconv.ParseFloat(raw, 64)
}

// evaluator indexes derivations by the fields that feed them.
type evaluator struct {
	derivations []Derivation
	bySource    map[string][]Derivation
}

func newEvaluator(derivations []Derivation) *evaluator {
	e := &evaluator{
		derivations: derivations,
		bySource:    make(map[string][]Derivation),
	}
	for _, d := range derivations {
		for _, src := range d.Sources() {
			e.bySource[src] = append(e.bySource[src], d)
		}
	}
	return e
}

// affectedBy returns the derivations that read the named field.
func (e *evaluator) affectedBy(name string) []Derivation {
	return e.bySource[name]
}
