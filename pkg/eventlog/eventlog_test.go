package eventlog

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_RedactsSensitiveKeys(t *testing.T) {
	l := New(10)
	l.Record(Event{
		ToolName: "navigate",
		Params: map[string]any{
			"url":      "http://localhost:3000",
			"apiToken": "supersecret",
			"Password": "hunter2",
		},
		Result: ResultSummary{Status: "ok"},
	})

	entries := l.GetEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, Redacted, entries[0].Params["apiToken"])
	assert.Equal(t, Redacted, entries[0].Params["Password"])
	assert.Equal(t, "http://localhost:3000", entries[0].Params["url"])
}

func TestRecord_AppliesRegisteredPatternToStringValues(t *testing.T) {
	l := New(10)
	l.RegisterPattern(regexp.MustCompile(`ssn-\d{3}-\d{2}-\d{4}`))
	l.Record(Event{
		ToolName: "fill_form",
		Params:   map[string]any{"note": "applicant ssn-123-45-6789 on file"},
		Result:   ResultSummary{Status: "ok"},
	})

	entries := l.GetEntries()
	assert.NotContains(t, entries[0].Params["note"], "123-45-6789")
	assert.Contains(t, entries[0].Params["note"], Redacted)
}

func TestRecord_RedactsNestedParams(t *testing.T) {
	l := New(10)
	l.Record(Event{
		ToolName: "login",
		Params: map[string]any{
			"credentials": map[string]any{"password": "hunter2"},
		},
		Result: ResultSummary{Status: "ok"},
	})

	entries := l.GetEntries()
	nested := entries[0].Params["credentials"].(map[string]any)
	assert.Equal(t, Redacted, nested["password"])
}

func TestRingBuffer_EvictsOldestWhenFull(t *testing.T) {
	l := New(3)
	for i := 0; i < 5; i++ {
		l.Record(Event{ToolName: "navigate", Result: ResultSummary{Status: "ok"}})
	}
	assert.Equal(t, 3, l.Size())
}

func TestClear_EmptiesBuffer(t *testing.T) {
	l := New(3)
	l.Record(Event{ToolName: "navigate", Result: ResultSummary{Status: "ok"}})
	l.Clear()
	assert.Equal(t, 0, l.Size())
	assert.Empty(t, l.GetEntries())
}

func TestRecord_DoesNotMutateCallerParams(t *testing.T) {
	l := New(3)
	params := map[string]any{"password": "hunter2"}
	l.Record(Event{ToolName: "login", Params: params, Result: ResultSummary{Status: "ok"}})
	assert.Equal(t, "hunter2", params["password"])
}
