package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseFloatPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"25", 25},
		{"  33.3", 33.3},
		{"12.5px", 12.5},
		{"-4", -4},
		{"+.5", 0.5},
		{"5.", 5},
		{"1e2", 100},
		{"1e", 1},
		{"2E-1%", 0.2},
		{"Infinity", math.Inf(1)},
		{"-Infinityx", math.Inf(-1)},
		{"\uFEFF7", 7},
		{"\u00a0\u2028\t8", 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFloatPrefix(tt.in), "ParseFloatPrefix(%q)", tt.in)
	}

	for _, bad := range []string{"", "   ", "abc", ".", "-", "e5", "px12", "\u00859"} {
		assert.True(t, math.IsNaN(ParseFloatPrefix(bad)), "ParseFloatPrefix(%q) 应为 NaN", bad)
	}
}

func TestInterval_JSONAcceptsNumberAndString(t *testing.T) {
	var f struct {
		A Interval `json:"a"`
		B Interval `json:"b"`
		C Interval `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 25, "b": "33.3", "c": null}`), &f))

	assert.Equal(t, Interval("25"), f.A)
	assert.Equal(t, 33.3, f.B.Float())
	assert.True(t, f.C.IsNaN())

	out, err := json.Marshal(f)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 25, "b": 33.3, "c": ""}`, string(out))
}

func TestInterval_JSONKeepsNonNumericText(t *testing.T) {
	out, err := json.Marshal(Interval("50%"))
	require.NoError(t, err)
	assert.Equal(t, `"50%"`, string(out))
}

func TestInterval_YAML(t *testing.T) {
	var f struct {
		A Interval `yaml:"a"`
		B Interval `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 75\nb: \"12.5\"\n"), &f))
	assert.Equal(t, 75.0, f.A.Float())
	assert.Equal(t, 12.5, f.B.Float())

	assert.Error(t, yaml.Unmarshal([]byte("a: [1, 2]\n"), &f))
}

func TestNewInterval(t *testing.T) {
	assert.Equal(t, Interval("100"), NewInterval(100))
	assert.Equal(t, Interval("12.5"), NewInterval(12.5))
}
