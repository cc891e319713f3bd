//go:build unit

package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, raw string) map[string]any {
	t.Helper()

	payload := map[string]any{}
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestValidatePayload(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		action  string
		payload string
		valid   bool
	}{
		{"getList empty", "getList", `{}`, true},
		{"getUpdates empty", "getUpdates", `{}`, true},
		{"getDetail with row", "getDetail", `{"row": 3}`, true},
		{"getDetail string row", "getDetail", `{"row": "abc"}`, false},
		{"getDetail fractional row", "getDetail", `{"row": 1.5}`, false},
		{"getDetail negative row", "getDetail", `{"row": -1}`, false},
		{"getDetail missing row", "getDetail", `{}`, false},
		{"noChange with row", "noChange", `{"row": 0}`, true},
		{"complete full", "complete", `{"row": 2, "answer": "ok", "url": "https://x"}`, true},
		{"complete without url", "complete", `{"row": 2, "answer": "ok"}`, true},
		{"complete row only", "complete", `{"row": 2}`, true},
		{"complete missing row", "complete", `{"answer": "ok"}`, false},
		{"complete numeric answer", "complete", `{"row": 2, "answer": 7}`, false},
		{"complete numeric url", "complete", `{"row": 2, "answer": "ok", "url": 9}`, false},
		{"saveDraft full", "saveDraft", `{"row": 4, "answer": "draft"}`, true},
		{"saveDraft missing answer", "saveDraft", `{"row": 4}`, false},
		{"addQuestions list", "addQuestions", `{"questions": ["a", "b"]}`, true},
		{"addQuestions empty list", "addQuestions", `{"questions": []}`, false},
		{"addQuestions mixed list", "addQuestions", `{"questions": ["a", 1]}`, false},
		{"addQuestions missing", "addQuestions", `{}`, false},
		{"setPublished true", "setPublished", `{"row": 1, "published": true}`, true},
		{"setPublished missing flag", "setPublished", `{"row": 1}`, false},
		{"setPublished string flag", "setPublished", `{"row": 1, "published": "yes"}`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := validatePayload(tc.action, decodePayload(t, tc.payload))
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestKnownAction(t *testing.T) {
	t.Parallel()

	assert.True(t, knownAction("complete"))
	assert.True(t, knownAction("getList"))
	assert.False(t, knownAction("dropTables"))
	assert.False(t, knownAction(""))
}
