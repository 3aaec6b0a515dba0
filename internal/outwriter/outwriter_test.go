package outwriter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/jank324/paper-lapse/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestGetMaxTablePathWidth tests the width clamping logic.
func TestGetMaxTablePathWidth(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		expected int
	}{
		{name: "narrow override clamps to minimum", width: 40, expected: 15},
		{name: "normal override leaves room", width: 100, expected: 40},
		{name: "huge override clamps to maximum", width: 400, expected: 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &contract.Config{Width: tt.width}
			assert.Equal(t, tt.expected, GetMaxTablePathWidth(cfg))
		})
	}
}

// TestWriteJSON tests the shared indented JSON encoder.
func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	payload := map[string]int{"frames": 3}

	require.NoError(t, writeJSON(&buf, payload))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, payload, decoded)
	assert.Contains(t, buf.String(), "  ") // indented output
}

// TestWriteCSVWithHeader tests the shared CSV plumbing.
func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	header := []string{"index", "commit"}

	err := writeCSVWithHeader(&buf, header, func(w *csv.Writer) error {
		return w.Write([]string{"0", "a0000000"})
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{"0", "a0000000"}, records[1])
}
