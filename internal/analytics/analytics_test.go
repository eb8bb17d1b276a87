package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject(t *testing.T) {
	tests := []struct {
		score, total int
		want         float64
	}{
		{15, 15, 66},
		{9, 30, 19.8},
		{-5, 15, -22},
		{7, 15, 30.8},
		{1, 3, 22},
		{2, 30, 4.4},
	}
	for _, tt := range tests {
		got, ok := Project(tt.score, tt.total)
		require.True(t, ok)
		assert.InDelta(t, tt.want, got, 1e-9, "Project(%d, %d)", tt.score, tt.total)
	}

	_, ok := Project(3, 0)
	assert.False(t, ok)
}

func TestClassify_OBCVarc(t *testing.T) {
	st, ok := Lookup(OBC, VARC)
	require.True(t, ok)

	tests := []struct {
		name      string
		projected float64
		want      Band
	}{
		{"exactly mean", 31.94, BandAroundAverage},
		{"just above mean", 31.95, BandAboveAverage},
		{"just below mean", 31.93, BandBelowAverage},
		{"at upper bound", 40.94, BandAboveAverage},
		{"over upper bound", 40.95, BandAboveRange},
		{"at lower bound", 22.94, BandBelowAverage},
		{"under lower bound", 22.93, BandBelowRange},
		{"negative", -4.4, BandBelowRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.projected, st))
		})
	}
}

func TestCompare(t *testing.T) {
	cmp, err := Compare(15, 15, OBC)
	require.NoError(t, err)
	assert.True(t, cmp.Available)
	assert.Equal(t, 66.0, cmp.Projected)
	assert.Equal(t, BandAboveRange, cmp.Band)
	assert.Equal(t, "above the typical range", cmp.Label)
	assert.Equal(t, 22.94, cmp.Lower)
	assert.Equal(t, 40.94, cmp.Upper)
	assert.Equal(t,
		"Your projected VARC score of 66.00 is above the typical range for the OBC category's VARC section.",
		cmp.Statement(nil))
}

func TestCompare_ZeroTotalNotAvailable(t *testing.T) {
	cmp, err := Compare(0, 0, OBC)
	require.NoError(t, err)
	assert.False(t, cmp.Available)
	assert.Equal(t, BandNotAvailable, cmp.Band)
	assert.Equal(t, NotAvailableMessage, cmp.Statement(nil))
}

func TestCompare_UnknownCategory(t *testing.T) {
	_, err := Compare(3, 15, Category("XYZ"))
	assert.Error(t, err)
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory(" general ")
	require.NoError(t, err)
	assert.Equal(t, General, c)

	_, err = ParseCategory("EWS")
	assert.Error(t, err)
}

func TestTableComplete(t *testing.T) {
	for _, c := range Categories {
		for _, s := range []Section{VARC, LRDI, QA, Total} {
			st, ok := Lookup(c, s)
			assert.True(t, ok, "%s/%s missing", c, s)
			assert.Positive(t, st.Std, "%s/%s std", c, s)
		}
	}
}

type recordingTranslator struct {
	id   string
	data map[string]any
}

func (r *recordingTranslator) Td(id string, data map[string]any) string {
	r.id, r.data = id, data
	return "translated"
}

func TestStatement_UsesTranslator(t *testing.T) {
	cmp, err := Compare(9, 30, SC)
	require.NoError(t, err)

	tr := &recordingTranslator{}
	assert.Equal(t, "translated", cmp.Statement(tr))
	assert.Equal(t, "AnalysisBelowRange", tr.id)
	assert.Equal(t, "19.80", tr.data["Score"])
	assert.Equal(t, "SC", tr.data["Category"])
}
