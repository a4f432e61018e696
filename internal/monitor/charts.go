package monitor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/shieldball/internal/occlusion"
)

// maxChartPoints bounds the number of x-axis entries; longer runs are
// strided.
const maxChartPoints = 2000

// RenderSpeedChart writes an HTML page with the time and distance factor
// series and a bar chart of observed states.
func RenderSpeedChart(w io.Writer, samples []Sample) error {
	if len(samples) == 0 {
		return fmt.Errorf("no samples recorded")
	}
	stride := len(samples)/maxChartPoints + 1

	x := make([]string, 0, len(samples)/stride+1)
	timeData := make([]opts.LineData, 0, cap(x))
	distData := make([]opts.LineData, 0, cap(x))
	factors := make([]float64, 0, len(samples))
	counts := map[occlusion.State]int{}
	for i, s := range samples {
		counts[s.Final]++
		factors = append(factors, s.DistanceFactor)
		if i%stride != 0 {
			continue
		}
		x = append(x, strconv.FormatFloat(s.Elapsed.Seconds(), 'f', 2, 64))
		timeData = append(timeData, opts.LineData{Value: s.TimeFactor})
		distData = append(distData, opts.LineData{Value: s.DistanceFactor})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Speed ramp", Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Speed ramp",
			Subtitle: fmt.Sprintf("ticks=%d stride=%d max distance factor=%.2f", len(samples), stride, floats.Max(factors)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "t (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "factor"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
	)
	line.SetXAxis(x).
		AddSeries("time factor", timeData).
		AddSeries("distance factor", distData)

	states := []occlusion.State{occlusion.Shielded, occlusion.Exposed, occlusion.Undetermined}
	names := make([]string, len(states))
	bars := make([]opts.BarData, len(states))
	for i, st := range states {
		names[i] = st.String()
		bars[i] = opts.BarData{Value: counts[st]}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Observed state", Subtitle: "ticks per fused classification"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("ticks", bars,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.PageTitle = "Shieldball run"
	page.AddCharts(line, bar)
	return page.Render(w)
}

// SaveSpeedChart renders the speed chart to path.
func SaveSpeedChart(path string, samples []Sample) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := RenderSpeedChart(f, samples); err != nil {
		f.Close()
		return fmt.Errorf("render speed chart: %w", err)
	}
	return f.Close()
}
