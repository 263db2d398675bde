package bucketmap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromSlices(t *testing.T) {
	m, err := FromSlices([]int{1, 2, 1}, []string{"one", "two", "uno"})
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())
	v, err := m.Get(1)
	require.NoError(t, err)
	require.Equal(t, "uno", v)

	m, err = FromSlices([]int{1, 2}, []string{"one"})
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.Nil(t, m)
}

func TestFromSlices_Grows(t *testing.T) {
	keys := make([]int, 10)
	for i := range keys {
		keys[i] = i
	}
	m, err := FromSlices(keys, keys, WithCapacity(10))
	require.NoError(t, err)
	require.Equal(t, 20, m.Capacity())
}

func TestFromRows(t *testing.T) {
	m, err := FromRows[int, string]([][]any{{1, "one"}, {2, "two"}, {3, "three"}})
	require.NoError(t, err)
	require.Equal(t, oneTwoThree().Items(), m.Items())
}

func TestFromRows_NilElements(t *testing.T) {
	m, err := FromRows[any, any]([][]any{{nil, 1}, {false, nil}})
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())
	require.True(t, m.Contains(nil))
	v, err := m.Get(false)
	require.NoError(t, err)
	require.Nil(t, v)

	_, err = FromRows[int, any]([][]any{{nil, 1}})
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFromRows_Malformed(t *testing.T) {
	cases := map[string][][]any{
		"short row":  {{1, "one"}, {2}},
		"long row":   {{1, "one", "uno"}},
		"empty row":  {{}},
		"wrong key":  {{"1", "one"}},
		"wrong val":  {{1, 1}},
		"nil row":    {nil},
		"nil string": {{1, nil}},
	}
	for name, rows := range cases {
		t.Run(name, func(t *testing.T) {
			m, err := FromRows[int, string](rows)
			require.ErrorIs(t, err, ErrInvalidArgument)
			require.Nil(t, m)
		})
	}
}

func TestFromRows_ErrorNamesRow(t *testing.T) {
	_, err := FromRows[int, string]([][]any{{1, "one"}, {2, "two"}, {3}})
	require.ErrorContains(t, err, "row 2")
}

func TestMap_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(oneTwoThree())
	require.NoError(t, err)
	require.JSONEq(t, `[[1,"one"],[2,"two"],[3,"three"]]`, string(data))

	data, err = json.Marshal(New[string, int]())
	require.NoError(t, err)
	require.Equal(t, `[]`, string(data))
}

func TestMap_UnmarshalJSON(t *testing.T) {
	var m BucketMap[string, []int]
	err := json.Unmarshal([]byte(`[["a",[1,2]],["b",null],["a",[3]]]`), &m)
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())
	v, err := m.Get("a")
	require.NoError(t, err)
	require.Equal(t, []int{3}, v)
	require.True(t, m.Contains("b"))
}

func TestMap_UnmarshalJSON_RoundTrip(t *testing.T) {
	src := NewFromPairs(seqPairs(50))
	data, err := json.Marshal(src)
	require.NoError(t, err)

	dst := New[int, int]()
	require.NoError(t, json.Unmarshal(data, dst))
	require.True(t, src.Equal(dst))
	require.Equal(t, src.Capacity(), dst.Capacity())
}

func TestMap_UnmarshalJSON_KeepsConfig(t *testing.T) {
	m := New[int, int](WithCapacity(64), WithGrowOnly())
	m.Set(1, 1)
	require.NoError(t, json.Unmarshal([]byte(`[[2,2],[3,3]]`), m))
	require.Equal(t, []int{2, 3}, m.Keys())
	require.Equal(t, 64, m.Capacity())
	require.False(t, m.shrinkOn)
}

func TestMap_UnmarshalJSON_Null(t *testing.T) {
	m := oneTwoThree()
	require.NoError(t, json.Unmarshal([]byte(`null`), m))
	require.Equal(t, oneTwoThree().Items(), m.Items())

	var wrapped struct {
		M *BucketMap[int, string] `json:"m"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"m":null}`), &wrapped))
	require.Nil(t, wrapped.M)
}

func TestMap_UnmarshalJSON_Malformed(t *testing.T) {
	cases := map[string]string{
		"object":    `{"a":1}`,
		"flat":      `[1,2]`,
		"short row": `[[1,"one"],[2]]`,
		"long row":  `[[1,"one",3]]`,
		"null row":  `[null]`,
		"bad key":   `[["x","one"]]`,
		"bad value": `[[1,1]]`,
		"truncated": `[[1,"one"]`,
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			m := oneTwoThree()
			err := json.Unmarshal([]byte(data), m)
			require.Error(t, err)
			if name != "truncated" {
				require.ErrorIs(t, err, ErrInvalidArgument)
			}
			// Untouched on failure.
			require.Equal(t, oneTwoThree().Items(), m.Items())
		})
	}
}
