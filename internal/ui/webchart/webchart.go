// Package webchart renders an aggregated usage series as a standalone HTML
// chart.
package webchart

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/j-veylop/points-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
)

// Options control the rendered page.
type Options struct {
	Title    string
	Subtitle string
	Height   string
	Mode     models.ViewMode
}

// renderer is the part of a go-echarts chart that writes HTML.
type renderer interface {
	Render(w io.Writer) error
}

// AxisLabels returns one unique x-axis label per bucket.
func AxisLabels(series models.Series) []string {
	labels := make([]string, len(series.Points))
	for i, p := range series.Points {
		labels[i] = p.DateLabel + " " + p.TimeLabel
	}
	return labels
}

// separatorItems places a vertical mark line at the first bucket of each day.
func separatorItems(series models.Series) []opts.MarkLineNameXAxisItem {
	index := make(map[int64]string, len(series.Points))
	for _, p := range series.Points {
		index[p.BucketTime] = p.DateLabel + " " + p.TimeLabel
	}

	items := make([]opts.MarkLineNameXAxisItem, 0, len(series.Separators))
	for _, sep := range series.Separators {
		if x, ok := index[sep.BucketTime]; ok {
			items = append(items, opts.MarkLineNameXAxisItem{Name: sep.Label, XAxis: x})
		}
	}
	return items
}

func globalOptions(o Options) []charts.GlobalOpts {
	height := o.Height
	if height == "" {
		height = "560px"
	}
	title := o.Title
	if title == "" {
		title = "Poe points usage"
	}
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "100%", Height: height}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: o.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "30px"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Points"}),
	}
}

func markLineOpts(series models.Series) []charts.SeriesOpts {
	items := separatorItems(series)
	if len(items) == 0 {
		return nil
	}
	return []charts.SeriesOpts{
		charts.WithMarkLineNameXAxisItemOpts(items...),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol: []string{"none", "none"},
			Label:  &opts.Label{Show: opts.Bool(true), Formatter: "{b}"},
		}),
	}
}

// Build creates the chart for a series without rendering it.
func Build(series models.Series, o Options) renderer {
	x := AxisLabels(series)

	if o.Mode == models.ViewCumulative {
		values := aggregate.Project(series, models.ViewCumulative)
		data := make([]opts.LineData, len(values))
		for i, v := range values {
			data[i] = opts.LineData{Value: v}
		}

		line := charts.NewLine()
		line.SetGlobalOptions(globalOptions(o)...)
		seriesOpts := append([]charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		}, markLineOpts(series)...)
		line.SetXAxis(x).AddSeries("Cumulative points", data, seriesOpts...)
		return line
	}

	costs := aggregate.Project(series, models.ViewDiscrete)
	counts := aggregate.ProjectCounts(series)
	bars := make([]opts.BarData, len(costs))
	lineData := make([]opts.LineData, len(counts))
	for i := range costs {
		bars[i] = opts.BarData{Value: costs[i]}
		lineData[i] = opts.LineData{Value: counts[i]}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(o)...)
	bar.ExtendYAxis(opts.YAxis{Name: "Records"})
	bar.SetXAxis(x).AddSeries("Points", bars, markLineOpts(series)...)

	countLine := charts.NewLine()
	countLine.SetXAxis(x).AddSeries("Records", lineData,
		charts.WithLineChartOpts(opts.LineChart{YAxisIndex: 1, Smooth: opts.Bool(true)}),
	)
	bar.Overlap(countLine)
	return bar
}

// Render writes the chart page for a series.
func Render(w io.Writer, series models.Series, o Options) error {
	var buf bytes.Buffer
	if err := Build(series, o).Render(&buf); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile renders the chart page to path.
func WriteFile(path string, series models.Series, o Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Render(f, series, o); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
