package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneOrManySingleObject(t *testing.T) {
	var req BulkFlagsRequest
	err := json.Unmarshal([]byte(`{"flags": {"lat": 1.5, "lng": 2.5}}`), &req)
	require.NoError(t, err)

	require.Len(t, req.Flags, 1)
	assert.Equal(t, 1.5, *req.Flags[0].Latitude)
	assert.Equal(t, 2.5, *req.Flags[0].Longitude)
}

func TestOneOrManyArray(t *testing.T) {
	var req BulkFlagsRequest
	err := json.Unmarshal([]byte(`{"flags": [{"lat": 1, "lng": 2}, {"lat": 3, "lng": 4}]}`), &req)
	require.NoError(t, err)

	require.Len(t, req.Flags, 2)
	assert.Equal(t, 3.0, *req.Flags[1].Latitude)
}

func TestOneOrManyLeadingWhitespace(t *testing.T) {
	var items OneOrMany[FlagItem]
	err := json.Unmarshal([]byte(" \t\r\n[{\"lat\": 1, \"lng\": 2}]"), &items)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	err = json.Unmarshal([]byte(" \n{\"lat\": 1, \"lng\": 2}"), &items)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestOneOrManyEmptyArray(t *testing.T) {
	var items OneOrMany[OptionItem]
	err := json.Unmarshal([]byte(`[]`), &items)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOneOrManyInvalid(t *testing.T) {
	var items OneOrMany[QuestionItem]
	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &items))
	assert.Error(t, json.Unmarshal([]byte(`[{"text": 1}]`), &items))
}

func TestBulkDeleteResolveIDs(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		resolve func(*BulkDeleteRequest) []string
		want    []string
	}{
		{"generic key for flags", `{"ids": ["a", "b"]}`, (*BulkDeleteRequest).ResolveFlagIDs, []string{"a", "b"}},
		{"flag key", `{"flag_ids": ["f1"]}`, (*BulkDeleteRequest).ResolveFlagIDs, []string{"f1"}},
		{"question key", `{"question_ids": ["q1"]}`, (*BulkDeleteRequest).ResolveQuestionIDs, []string{"q1"}},
		{"option key", `{"option_ids": ["o1"]}`, (*BulkDeleteRequest).ResolveOptionIDs, []string{"o1"}},
		{"generic wins over typed", `{"ids": ["a"], "flag_ids": ["f1"]}`, (*BulkDeleteRequest).ResolveFlagIDs, []string{"a"}},
		{"empty body", `{}`, (*BulkDeleteRequest).ResolveFlagIDs, nil},
		{"empty generic list skipped", `{"ids": [], "question_ids": ["q1"]}`, (*BulkDeleteRequest).ResolveQuestionIDs, []string{"q1"}},
		{"foreign alias ignored for flags", `{"question_ids": ["q1"]}`, (*BulkDeleteRequest).ResolveFlagIDs, nil},
		{"foreign alias ignored for questions", `{"flag_ids": ["f1"], "option_ids": ["o1"]}`, (*BulkDeleteRequest).ResolveQuestionIDs, nil},
		{"foreign alias ignored for options", `{"question_ids": ["q1"]}`, (*BulkDeleteRequest).ResolveOptionIDs, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req BulkDeleteRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, tt.want, tt.resolve(&req))
		})
	}
}
