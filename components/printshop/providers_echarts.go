package printshop

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "300px"

var sharedChartCache = NewChartCache(5 * time.Minute)

// EChartsProvider renders server-side chart HTML for a fixed chart type.
type EChartsProvider struct {
	chartType  string
	cache      RenderCache
	theme      string
	assetsHost string
}

// EChartsProviderOption customizes provider behavior.
type EChartsProviderOption func(*EChartsProvider)

// WithChartCache injects a render cache. A nil cache disables memoization.
func WithChartCache(cache RenderCache) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.cache = cache
	}
}

// WithChartTheme sets a static theme (defaults to Westeros).
func WithChartTheme(theme string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		if theme != "" {
			p.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) EChartsProviderOption {
	return func(p *EChartsProvider) {
		p.assetsHost = host
	}
}

// NewEChartsProvider builds a renderer for "bar" or "line" charts.
func NewEChartsProvider(chartType string, opts ...EChartsProviderOption) *EChartsProvider {
	p := &EChartsProvider{
		chartType: strings.ToLower(chartType),
		cache:     sharedChartCache,
		theme:     types.ThemeWesteros,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RenderSeries renders a single series with its fixed colour, legend and
// tooltip configuration.
func (p *EChartsProvider) RenderSeries(title string, series ChartSeries) (string, error) {
	if len(series.Points) == 0 {
		return "", fmt.Errorf("chart series %s has no points", series.Key)
	}
	render := func() (string, error) {
		switch p.chartType {
		case "bar":
			return p.renderBarChart(title, series)
		case "line":
			return p.renderLineChart(title, series)
		default:
			return "", fmt.Errorf("unsupported chart type: %s", p.chartType)
		}
	}
	if p.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s:%s", p.chartType, p.theme, title, configHash(series))
	return p.cache.GetOrRender(key, render)
}

// PurgeCache drops cached snippets so replaced fixtures render fresh.
func (p *EChartsProvider) PurgeCache() {
	if purger, ok := p.cache.(interface{ Purge() }); ok {
		purger.Purge()
	}
}

func (p *EChartsProvider) renderBarChart(title string, series ChartSeries) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(p.globalChartOptions(title)...)
	bar.SetXAxis(series.Labels())
	bar.AddSeries(seriesName(series), toBarData(series.Points),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: series.Color}),
	)
	return renderChart(bar)
}

func (p *EChartsProvider) renderLineChart(title string, series ChartSeries) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(p.globalChartOptions(title)...)
	line.SetXAxis(series.Labels())
	line.AddSeries(seriesName(series), toLineData(series.Points),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: series.Color}),
	)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

// renderChart returns the chart container and its init script without the
// surrounding document, so several charts can share one page.
func renderChart(chart interface{ RenderSnippet() render.ChartSnippet }) (html string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("render chart snippet: %v", r)
		}
	}()
	snippet := chart.RenderSnippet()
	return snippet.Element + snippet.Script, nil
}

// Assets returns the script URLs the rendered snippets depend on: the
// ECharts library plus the theme file.
func (p *EChartsProvider) Assets() []string {
	bar := charts.NewBar()
	bar.SetGlobalOptions(p.globalChartOptions("")...)
	assets := bar.GetAssets()
	assets.Validate(bar.AssetsHost)
	return append([]string(nil), assets.JSAssets.Values...)
}

func (p *EChartsProvider) globalChartOptions(title string) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  p.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if p.assetsHost != "" {
		initOpts.AssetsHost = p.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Bottom: "0"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{
			SplitLine: &opts.SplitLine{
				Show:      opts.Bool(true),
				LineStyle: &opts.LineStyle{Type: "dashed"},
			},
		}),
	}
}

func seriesName(series ChartSeries) string {
	if series.Label != "" {
		return series.Label
	}
	return series.Key
}

func toBarData(points []ChartPoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{
			Name:  point.Label,
			Value: point.Value,
		}
	}
	return data
}

func toLineData(points []ChartPoint) []opts.LineData {
	data := make([]opts.LineData, len(points))
	for i, point := range points {
		data[i] = opts.LineData{
			Name:  point.Label,
			Value: point.Value,
		}
	}
	return data
}
