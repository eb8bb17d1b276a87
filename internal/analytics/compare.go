package analytics

import "fmt"

// NotAvailableMessage is shown when nothing was scored.
const NotAvailableMessage = "Analysis not available as no questions were scored."

// Comparison is the outcome of comparing one score with a category.
type Comparison struct {
	Available bool     `json:"available"`
	Category  Category `json:"category"`
	Section   Section  `json:"section"`
	Projected float64  `json:"projected"`
	MaxMarks  int      `json:"maxMarks"`
	Mean      float64  `json:"mean"`
	Std       float64  `json:"std"`
	Lower     float64  `json:"lower"`
	Upper     float64  `json:"upper"`
	Band      Band     `json:"band"`
	Label     string   `json:"label"`
}

// Compare projects a reading-comprehension score onto the VARC section and
// classifies it for the category. A zero total yields an unavailable
// comparison without dividing.
func Compare(score, total int, c Category) (Comparison, error) {
	st, ok := Lookup(c, VARC)
	if !ok {
		return Comparison{}, fmt.Errorf("no statistics for category %q", c)
	}

	cmp := Comparison{
		Category: c,
		Section:  VARC,
		MaxMarks: SectionMaxMarks,
		Mean:     st.Mean,
		Std:      st.Std,
		Lower:    Round2(st.Mean - st.Std),
		Upper:    Round2(st.Mean + st.Std),
		Band:     BandNotAvailable,
	}

	projected, ok := Project(score, total)
	if !ok {
		cmp.Label = cmp.Band.String()
		return cmp, nil
	}

	cmp.Available = true
	cmp.Projected = projected
	cmp.Band = Classify(projected, st)
	cmp.Label = cmp.Band.String()
	return cmp, nil
}

// Translator renders a localized message with template data.
type Translator interface {
	Td(messageID string, data map[string]any) string
}

// Statement renders the comparison as a sentence. A nil Translator yields
// English.
func (c Comparison) Statement(tr Translator) string {
	if tr != nil {
		return tr.Td(c.Band.MessageID(), map[string]any{
			"Score":    fmt.Sprintf("%.2f", c.Projected),
			"Category": string(c.Category),
			"Section":  string(c.Section),
		})
	}
	if !c.Available {
		return NotAvailableMessage
	}
	return fmt.Sprintf("Your projected %s score of %.2f is %s for the %s category's %s section.",
		c.Section, c.Projected, c.Band, c.Category, c.Section)
}
