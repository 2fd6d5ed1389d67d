package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Attendance Report 2024-01-01 to 2024-01-31",
		Headers: []string{"Student Name", "Student ID", "Attendance %"},
		Rows: [][]string{
			{"Alice", "BCA024-001", "50.0"},
			{"Bob, Jr.", "BBA024-002", "75.0"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Student Name,Student ID,Attendance %", lines[0])
	assert.Equal(t, "Alice,BCA024-001,50.0", lines[1])
	// Fields containing commas get quoted.
	assert.Equal(t, `"Bob, Jr.",BBA024-002,75.0`, lines[2])
}

func TestCSVRenderPadsShortRows(t *testing.T) {
	data := sampleDataset()
	data.Rows = [][]string{{"OnlyName"}}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "OnlyName,,", lines[1])
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
	assert.NotEmpty(t, out)
}

func TestPDFRenderRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}
