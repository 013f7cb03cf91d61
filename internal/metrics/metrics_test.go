package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCounts(t *testing.T) {
	r := NewRegistry()
	r.RowsGenerated.WithLabelValues(DayLabel(2)).Add(15000)
	r.DefectRows.WithLabelValues(DayLabel(2), "late_arriving").Add(150)
	r.CrossDayDuplicateIDs.Set(0)

	assert.Equal(t, 15000.0, testutil.ToFloat64(r.RowsGenerated.WithLabelValues("2")))
	assert.Equal(t, 150.0, testutil.ToFloat64(r.DefectRows.WithLabelValues("2", "late_arriving")))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RowsGenerated.WithLabelValues(DayLabel(1)).Add(10)
	r.OutputBytes.WithLabelValues(DayLabel(1)).Set(2048)

	path := filepath.Join(t.TempDir(), "generation_metrics.prom")
	require.NoError(t, r.WriteTextfile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(raw)
	assert.True(t, strings.Contains(text, `datagen_rows_generated_total{day="1"} 10`))
	assert.True(t, strings.Contains(text, `datagen_output_bytes{day="1"} 2048`))
}
