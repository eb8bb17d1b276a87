package intake

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rcdrill/internal/history"
	"github.com/abhisek/rcdrill/internal/session"
)

type mapKV map[string][]byte

func (m mapKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m mapKV) Put(_ context.Context, key string, value []byte) error {
	m[key] = value
	return nil
}

func (m mapKV) Delete(_ context.Context, key string) error {
	delete(m, key)
	return nil
}

func historyWith(t *testing.T, passages ...string) *history.Store {
	t.Helper()
	h := history.Open(context.Background(), mapKV{})
	require.NoError(t, h.Append(context.Background(), session.StoredResult{
		ID:               "r-1",
		Date:             time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		RawInputPassages: passages,
	}))
	return h
}

func TestCheck_Accepts(t *testing.T) {
	got, err := Check([]string{"  first passage \n", "second"}, 2, historyWith(t, "other"))
	require.NoError(t, err)
	assert.Equal(t, []string{"first passage", "second"}, got)
}

func TestCheck_Count(t *testing.T) {
	for _, n := range []int{0, 5, -1} {
		_, err := Check([]string{"a"}, n, nil)
		assert.ErrorIs(t, err, ErrPassageCount, "n=%d", n)
	}
}

func TestCheck_Incomplete(t *testing.T) {
	_, err := Check([]string{"a", "   ", "c"}, 3, nil)
	var ie *IncompleteError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 1, ie.PassageIndex)
	assert.ErrorIs(t, err, ErrIncomplete)

	_, err = Check([]string{"a"}, 2, nil)
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 1, ie.PassageIndex)
	assert.Equal(t, "passage 2 of 2 is empty", ie.Error())
}

func TestCheck_Duplicate(t *testing.T) {
	stored := "The committee met at dawn and adjourned without a vote."
	h := historyWith(t, stored)

	_, err := Check([]string{"fresh text", "\t" + stored + "  "}, 2, h)
	var de *DuplicateError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, 1, de.PassageIndex)
	assert.Equal(t, "r-1", de.ResultID)
	assert.True(t, de.Date.Equal(time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)))
	assert.True(t, strings.HasSuffix(de.Snippet, "..."))
}

func TestDuplicateError_NamesDayInLocation(t *testing.T) {
	de := &DuplicateError{
		PassageIndex: 0,
		Snippet:      "The committee met",
		Date:         time.Date(2026, 3, 14, 23, 30, 0, 0, time.UTC),
	}
	assert.Contains(t, de.Error(), "taken on 2026-03-14")

	de.Location = time.FixedZone("UTC+9", 9*60*60)
	assert.Contains(t, de.Error(), "taken on 2026-03-15")
}

func TestCheck_OneCharacterDifferenceIsAccepted(t *testing.T) {
	stored := "The committee met at dawn."
	h := historyWith(t, stored)

	for _, variant := range []string{
		"The committee met at dawn!",
		"the committee met at dawn.",
		"The committee met at  dawn.",
	} {
		_, err := Check([]string{variant}, 1, h)
		assert.NoError(t, err, variant)
	}
}

func TestCheck_ExtraPassagesIgnored(t *testing.T) {
	got, err := Check([]string{"a", "b", "c"}, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestValidCount(t *testing.T) {
	assert.False(t, ValidCount(0))
	assert.True(t, ValidCount(1))
	assert.True(t, ValidCount(4))
	assert.False(t, ValidCount(5))
}
