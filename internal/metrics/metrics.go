package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the counters for one generator run. It is written out as
// a node_exporter textfile next to the day files, never served.
type Registry struct {
	reg                  *prometheus.Registry
	RowsGenerated        *prometheus.CounterVec
	DefectRows           *prometheus.CounterVec
	OutputBytes          *prometheus.GaugeVec
	GenerationSec        *prometheus.GaugeVec
	DetectionMismatches  prometheus.Gauge
	CrossDayDuplicateIDs prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datagen_rows_generated_total",
		Help: "Rows generated per simulated day.",
	}, []string{"day"})
	defects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datagen_defect_rows_total",
		Help: "Rows per injected defect class and day.",
	}, []string{"day", "class"})
	bytes := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "datagen_output_bytes",
		Help: "Size of each written day file.",
	}, []string{"day"})
	genSec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "datagen_generation_seconds",
		Help: "Wall time spent generating each day.",
	}, []string{"day"})
	mismatches := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "datagen_detection_mismatches",
		Help: "Checks where symptom detection disagreed with the injected defect tags.",
	})
	dups := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "datagen_cross_day_duplicate_ids",
		Help: "transaction_id values seen in more than one day.",
	})

	r.MustRegister(rows, defects, bytes, genSec, mismatches, dups)
	return &Registry{
		reg:                  r,
		RowsGenerated:        rows,
		DefectRows:           defects,
		OutputBytes:          bytes,
		GenerationSec:        genSec,
		DetectionMismatches:  mismatches,
		CrossDayDuplicateIDs: dups,
	}
}

// DayLabel formats a day number as a label value
func DayLabel(day int) string { return strconv.Itoa(day) }

// Gatherer exposes the underlying registry for tests and exporters
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile writes all metrics in the Prometheus text format to path
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
