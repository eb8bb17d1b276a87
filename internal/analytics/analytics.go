// Package analytics projects a practice score onto the reference exam's
// section scale and compares it with published category statistics.
package analytics

import (
	"fmt"
	"math"
	"strings"
)

// Category is a reservation category with its own score distribution.
type Category string

const (
	General Category = "GENERAL"
	OBC     Category = "OBC"
	SC      Category = "SC"
	ST      Category = "ST"
)

// DefaultCategory is used when none is configured.
const DefaultCategory = OBC

// Categories lists every known category in display order.
var Categories = []Category{General, OBC, SC, ST}

// Section is a section of the reference exam.
type Section string

const (
	VARC  Section = "VARC"
	LRDI  Section = "LRDI"
	QA    Section = "QA"
	Total Section = "TOTAL"
)

const (
	// SectionMaxMarks is the maximum score of one section.
	SectionMaxMarks = 66

	// OverallMaxMarks is the maximum score across all three sections.
	OverallMaxMarks = 198
)

// Stat is the mean and standard deviation of a score distribution.
type Stat struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

var table = map[Category]map[Section]Stat{
	General: {
		VARC:  {36.0, 9.98},
		LRDI:  {34.93, 10.0},
		QA:    {33.99, 10.03},
		Total: {104.92, 17.3},
	},
	OBC: {
		VARC:  {31.94, 9.0},
		LRDI:  {32.0, 9.01},
		QA:    {31.03, 9.02},
		Total: {94.98, 15.55},
	},
	SC: {
		VARC:  {28.97, 8.01},
		LRDI:  {28.0, 8.03},
		QA:    {28.03, 7.99},
		Total: {85.0, 13.87},
	},
	ST: {
		VARC:  {27.03, 8.0},
		LRDI:  {25.95, 8.01},
		QA:    {26.97, 8.03},
		Total: {79.95, 13.92},
	},
}

// Lookup returns the statistics for a category and section.
func Lookup(c Category, s Section) (Stat, bool) {
	sections, ok := table[c]
	if !ok {
		return Stat{}, false
	}
	st, ok := sections[s]
	return st, ok
}

// ParseCategory parses a category name case-insensitively.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := table[c]; !ok {
		return "", fmt.Errorf("unknown category %q (want one of GENERAL, OBC, SC, ST)", s)
	}
	return c, nil
}

// Band is where a projected score falls relative to the distribution.
type Band int

const (
	BandNotAvailable Band = iota
	BandAboveRange
	BandBelowRange
	BandAboveAverage
	BandBelowAverage
	BandAroundAverage
)

var bandLabels = map[Band]string{
	BandAboveRange:    "above the typical range",
	BandBelowRange:    "below the typical range",
	BandAboveAverage:  "above the average and within the typical range",
	BandBelowAverage:  "below the average but within the typical range",
	BandAroundAverage: "around the average",
}

// String returns the English label for the band.
func (b Band) String() string {
	if l, ok := bandLabels[b]; ok {
		return l
	}
	return "not available"
}

// MessageID is the localization key of the band's statement.
func (b Band) MessageID() string {
	switch b {
	case BandAboveRange:
		return "AnalysisAboveRange"
	case BandBelowRange:
		return "AnalysisBelowRange"
	case BandAboveAverage:
		return "AnalysisAboveAverage"
	case BandBelowAverage:
		return "AnalysisBelowAverage"
	case BandAroundAverage:
		return "AnalysisAroundAverage"
	default:
		return "AnalysisNotAvailable"
	}
}

// Round2 rounds to two decimal places.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Project rescales score out of total onto the section scale. It reports
// false when total is zero.
func Project(score, total int) (float64, bool) {
	if total == 0 {
		return 0, false
	}
	return Round2(float64(score) / float64(total) * SectionMaxMarks), true
}

// Classify places a projected score against a distribution. Bounds are
// mean ± one standard deviation, rounded to two decimals.
func Classify(projected float64, st Stat) Band {
	lower := Round2(st.Mean - st.Std)
	upper := Round2(st.Mean + st.Std)
	switch {
	case projected > upper:
		return BandAboveRange
	case projected < lower:
		return BandBelowRange
	case projected > st.Mean:
		return BandAboveAverage
	case projected < st.Mean:
		return BandBelowAverage
	default:
		return BandAroundAverage
	}
}
