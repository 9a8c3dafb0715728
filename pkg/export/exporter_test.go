package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"name", "score", "absent"},
		Rows: []map[string]string{
			{"name": "Ahmed Ali", "score": "2", "absent": "1"},
			{"name": "Sara, Khan", "score": "-1"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("\ufeff")))
	assert.Equal(t, "\ufeffname,score,absent\nAhmed Ali,2,1\n\"Sara, Khan\",-1,\n", string(out))
}

func TestTSVExporterRender(t *testing.T) {
	out, err := NewTSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	assert.Equal(t, "name\tscore\tabsent\nAhmed Ali\t2\t1\nSara, Khan\t-1\t\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter("").Render(sampleDataset(), "Class 5A")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter("").Render(Dataset{}, "")
	require.Error(t, err)
}

func TestPDFExporterMissingFont(t *testing.T) {
	_, err := NewPDFExporter(filepath.Join(t.TempDir(), "missing.ttf")).Render(sampleDataset(), "")
	require.Error(t, err)
}
