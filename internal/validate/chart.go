package validate

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
)

// ChartFileName is the optional PNG written beside the day files
const ChartFileName = "defect_summary.png"

// RenderDefectChart draws a bar per injected issue class as PNG
func RenderDefectChart(w io.Writer, r *Report) error {
	issues := r.Issues()
	if len(issues) == 0 {
		return fmt.Errorf("no defect classes to chart")
	}

	bars := make([]chart.Value, 0, len(issues))
	maxCount := 0
	for _, issue := range issues {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s (D%d)", issue.Name, issue.Day),
			Value: float64(issue.Detected),
		})
		maxCount = max(maxCount, issue.Detected)
	}

	barChart := chart.BarChart{
		Title: fmt.Sprintf("Injected data quality issues (%d rows)", r.TotalRows),
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:    900,
		Height:   450,
		BarWidth: 120,
		Bars:     bars,
	}

	// A zero-height range cannot be ticked, so give empty charts headroom.
	barChart.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: float64(max(maxCount, 1)) * 1.1}
	barChart.YAxis.ValueFormatter = func(v interface{}) string {
		if vf, isFloat := v.(float64); isFloat {
			return fmt.Sprintf("%.0f", vf)
		}
		return ""
	}

	if err := barChart.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
