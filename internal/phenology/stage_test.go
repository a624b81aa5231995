package phenology

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStage_KeysAndLabels(t *testing.T) {
	expected := []struct {
		stage Stage
		key   string
		label string
	}{
		{BeforeBloom, "before_bloom", "開花前"},
		{Opening, "blooming", "開花"},
		{ThirtyPercent, "30_percent", "3分咲き"},
		{FiftyPercent, "50_percent", "5分咲き"},
		{FullBloom, "full_bloom", "8分咲き（満開）"},
		{Falling, "falling", "散り始め"},
		{FlowersAndLeaves, "with_leaves", "花＋若葉（葉桜）"},
		{LeavesOnly, "leaves_only", "葉のみ"},
	}
	require.Len(t, Stages, len(expected))
	for i, e := range expected {
		assert.Equal(t, e.stage, Stages[i], "stages are ordered")
		assert.Equal(t, e.key, e.stage.String())
		assert.Equal(t, e.label, e.stage.Label())

		parsed, ok := ParseStage(e.key)
		require.True(t, ok)
		assert.Equal(t, e.stage, parsed)
	}
}

func TestStage_Invalid(t *testing.T) {
	s := Stage(42)
	assert.False(t, s.Valid())
	assert.Equal(t, "Stage(42)", s.String())
	assert.Empty(t, s.Label())
	_, err := s.MarshalText()
	require.Error(t, err)

	_, ok := ParseStage("half_bloom")
	assert.False(t, ok)
}

func TestStage_JSON(t *testing.T) {
	type payload struct {
		Status Stage `json:"status"`
	}
	data, err := json.Marshal(payload{Status: FullBloom})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"full_bloom"}`, string(data))

	var p payload
	require.NoError(t, json.Unmarshal([]byte(`{"status":"with_leaves"}`), &p))
	assert.Equal(t, FlowersAndLeaves, p.Status)

	require.Error(t, json.Unmarshal([]byte(`{"status":"nope"}`), &p))
}
