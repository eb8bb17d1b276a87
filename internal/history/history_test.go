package history

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/rcdrill/internal/session"
	"github.com/abhisek/rcdrill/internal/store"
)

type memKV struct {
	data    map[string][]byte
	putErr  error
	getErr  error
	puts    int
	deletes int
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string][]byte)}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.deletes++
	delete(m.data, key)
	return nil
}

func result(id string, at time.Time, passages ...string) session.StoredResult {
	return session.StoredResult{
		ID:                 id,
		Date:               at,
		Score:              6,
		TotalPossibleScore: 15,
		RawInputPassages:   passages,
		NumberOfPassages:   len(passages),
	}
}

func TestOpen_MissingDocumentIsEmpty(t *testing.T) {
	s := Open(context.Background(), newMemKV())
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.All())
}

func TestOpen_CorruptDocumentIsEmpty(t *testing.T) {
	kv := newMemKV()
	kv.data[DocumentKey] = []byte(`{not json`)

	s := Open(context.Background(), kv)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, `{not json`, string(kv.data[DocumentKey]), "corrupt doc must not be rewritten on load")
}

func TestOpen_ReadErrorIsEmpty(t *testing.T) {
	kv := newMemKV()
	kv.getErr = errors.New("disk gone")
	s := Open(context.Background(), kv)
	assert.Equal(t, 0, s.Len())
}

func TestAppend_RewritesFullDocument(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := Open(ctx, kv)

	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(ctx, result("a", at, "first passage")))
	require.NoError(t, s.Append(ctx, result("b", at.Add(time.Hour), "second passage")))
	assert.Equal(t, 2, kv.puts)

	var doc []session.StoredResult
	require.NoError(t, json.Unmarshal(kv.data[DocumentKey], &doc))
	require.Len(t, doc, 2)
	assert.Equal(t, "a", doc[0].ID)
	assert.Equal(t, "b", doc[1].ID)

	reopened := Open(ctx, kv)
	assert.Equal(t, s.All(), reopened.All())
}

func TestAppend_PersistFailureKeepsMemory(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := Open(ctx, kv)
	require.NoError(t, s.Append(ctx, result("a", time.Now(), "p1")))

	kv.putErr = errors.New("quota exceeded")
	err := s.Append(ctx, result("b", time.Now(), "p2"))

	var pe *PersistError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, kv.putErr)
	assert.Equal(t, 2, s.Len())
	_, ok := s.Get("b")
	assert.True(t, ok, "in-memory state must keep the unpersisted result")

	var doc []session.StoredResult
	require.NoError(t, json.Unmarshal(kv.data[DocumentKey], &doc))
	assert.Len(t, doc, 1, "previous document must survive a failed write")
}

func TestAppend_ActsAsResultSink(t *testing.T) {
	var _ session.ResultSink = (*Store)(nil)
}

func TestFindDuplicatePassage(t *testing.T) {
	ctx := context.Background()
	s := Open(ctx, newMemKV())
	at := time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.Append(ctx, result("a", at, "Alpha passage text.", "Beta passage text.")))
	require.NoError(t, s.Append(ctx, result("b", at.AddDate(0, 0, 1), "  Beta passage text.\n")))

	tests := []struct {
		name      string
		candidate string
		wantID    string
	}{
		{"exact", "Alpha passage text.", "a"},
		{"trimmed candidate", "\n  Alpha passage text.  ", "a"},
		{"first match wins", "Beta passage text.", "a"},
		{"one character differs", "Alpha passage text!", ""},
		{"case differs", "alpha passage text.", ""},
		{"blank", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := s.FindDuplicatePassage(tt.candidate)
			if tt.wantID == "" {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantID, r.ID)
		})
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	s := Open(ctx, kv)
	require.NoError(t, s.Append(ctx, result("a", time.Now(), "p")))

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, s.Len())
	_, ok := kv.data[DocumentKey]
	assert.False(t, ok)
}

func TestStore_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open("file:history_roundtrip?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := Open(ctx, db.KV())
	at := time.Date(2026, 7, 9, 18, 30, 0, 0, time.UTC)
	r := result("x", at, "A passage about rivers.")
	r.Questions = []session.Question{{ID: "q-0", QuestionText: "Q?", Options: []string{"a", "b", "c", "d"}, CorrectAnswerText: "a"}}
	r.QuestionStates = []session.QuestionState{{QuestionID: "q-0", SelectedOption: "b", TimeSpentOnQuestion: 12}}
	require.NoError(t, s.Append(ctx, r))

	got, ok := Open(ctx, db.KV()).Get("x")
	require.True(t, ok)
	assert.True(t, got.Date.Equal(at))
	assert.Equal(t, r.Questions, got.Questions)
	assert.Equal(t, r.QuestionStates, got.QuestionStates)
}
