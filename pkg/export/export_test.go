package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Date", "Student", "Notes"},
		Summary: []string{"Attendance rate: 70%"},
		Rows: []map[string]string{
			{"Date": "2024-03-04", "Student": "Budi", "Notes": "=HYPERLINK(\"x\")"},
			{"Date": "2024-03-05", "Student": "Siti"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Student,Notes", lines[0])
	assert.Equal(t, `2024-03-04,Budi,"'=HYPERLINK(""x"")"`, lines[1])
	assert.Equal(t, "2024-03-05,Siti,", lines[2])
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "x")
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	data := sampleDataset()
	for i := 0; i < 60; i++ {
		data.Rows = append(data.Rows, map[string]string{"Date": "2024-03-06", "Student": strings.Repeat("Long name ", 20)})
	}
	out, err := NewPDFExporter().Render(data, "Attendance report")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
