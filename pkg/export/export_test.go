package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{Headers: []string{"Student Name", "Block"}}
	data.AddRow("Ada Obi", "A")
	data.AddRow("Comma, Name", "B")

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Student Name,Block\nAda Obi,A\n\"Comma, Name\",B\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{Headers: []string{"Student Name", "Block"}}
	data.AddRow("Ada Obi", "A")

	out, err := NewPDFExporter().Render(Document{Title: "Room Allocation Report", Summary: []string{"Status: COMPLETED"}, Table: data})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
