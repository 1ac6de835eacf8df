package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseList(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want List
	}{
		{"nil", nil, List{}},
		{"empty text", "", List{}},
		{"null text", "null", List{}},
		{"json array", `["a.jpg","b.jpg"]`, List{"a.jpg", "b.jpg"}},
		{"json array bytes", []byte(`["a.jpg"]`), List{"a.jpg"}},
		{"bare string", "data:image/png;base64,AAAA", List{"data:image/png;base64,AAAA"}},
		{"json string", `"a.jpg"`, List{"a.jpg"}},
		{"already a slice", []string{"x"}, List{"x"}},
		{"mixed elements", []any{"x", nil, 3.0}, List{"x", "3"}},
		{"bare number", "42", List{"42"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseList(tt.raw))
		})
	}
}

func TestListNeverEncodesNull(t *testing.T) {
	var l List
	assert.Equal(t, "[]", l.Encode())

	b, err := json.Marshal(struct {
		Images List `json:"images"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"images":[]}`, string(b))
}

func TestListUnmarshalJSON(t *testing.T) {
	var v struct {
		Images List `json:"images"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"images":null}`), &v))
	assert.Equal(t, List{}, v.Images)

	require.NoError(t, json.Unmarshal([]byte(`{"images":"[\"a\",\"b\"]"}`), &v))
	assert.Equal(t, List{"a", "b"}, v.Images)

	require.NoError(t, json.Unmarshal([]byte(`{"images":"plain.jpg"}`), &v))
	assert.Equal(t, List{"plain.jpg"}, v.Images)
}

func TestListScanValue(t *testing.T) {
	l := List{"a", "b"}
	v, err := l.Value()
	require.NoError(t, err)

	var back List
	require.NoError(t, back.Scan(v))
	assert.Equal(t, l, back)

	require.NoError(t, back.Scan(nil))
	assert.Equal(t, List{}, back)
}

func TestListCloneIsIndependent(t *testing.T) {
	l := List{"a"}
	c := l.Clone()
	c[0] = "b"
	assert.Equal(t, "a", l[0])
	assert.True(t, l.Contains("a"))
	assert.False(t, l.Contains("b"))
}
