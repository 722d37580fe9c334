package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  FlexString
	}{
		{name: "string", input: `"tv-1399"`, want: "tv-1399"},
		{name: "integer", input: `603`, want: "603"},
		{name: "null", input: `null`, want: ""},
		{name: "empty string", input: `""`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got FlexString
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFlexString_RejectsObjects(t *testing.T) {
	var got FlexString
	err := json.Unmarshal([]byte(`{"id":1}`), &got)
	assert.Error(t, err)
}

func TestFlexString_InsideStruct(t *testing.T) {
	var body struct {
		ID   FlexString `json:"id"`
		Year FlexString `json:"year"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"year":"1999"}`), &body))
	assert.Equal(t, "42", body.ID.String())
	assert.Equal(t, "1999", body.Year.String())
}

func TestMediaUpdate_IsEmpty(t *testing.T) {
	assert.True(t, MediaUpdate{}.IsEmpty())

	watched := 3
	assert.False(t, MediaUpdate{WatchedEpisodes: &watched}.IsEmpty())
}
