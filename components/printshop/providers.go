package printshop

import (
	"context"
	"fmt"
)

const (
	PanelMetrics      = "printshop.panel.metrics"
	PanelQueue        = "printshop.panel.queue"
	PanelStats        = "printshop.panel.stats"
	PanelSalesChart   = "printshop.panel.sales_chart"
	PanelPrintsChart  = "printshop.panel.prints_chart"
	queueTabPending   = "pending"
	queueTabCompleted = "completed"
)

// Pending rows show these actions. They are display-only.
var pendingTaskActions = []string{"View", "Complete", "Reject"}

var defaultPanelDefinitions = []PanelDefinition{
	{Code: PanelMetrics, Title: "Overview"},
	{Code: PanelQueue, Title: "Print Queue"},
	{Code: PanelStats, Title: "Detailed Statistics"},
	{Code: PanelSalesChart, Title: "Monthly Sales", Configuration: map[string]any{"series": SeriesMonthlySales}},
	{Code: PanelPrintsChart, Title: "Number of Prints", Configuration: map[string]any{"series": SeriesPrintVolume}},
}

// DefaultPanelDefinitions returns the dashboard panels in display order.
func DefaultPanelDefinitions() []PanelDefinition {
	out := make([]PanelDefinition, len(defaultPanelDefinitions))
	copy(out, defaultPanelDefinitions)
	return out
}

func defaultProviders(repo DashboardRepository, charts *EChartsProvider) map[string]Provider {
	if charts == nil {
		charts = NewEChartsProvider("bar")
	}
	return map[string]Provider{
		PanelMetrics:     newMetricsProvider(repo),
		PanelQueue:       newQueueProvider(repo),
		PanelStats:       newStatsProvider(repo),
		PanelSalesChart:  NewSeriesChartProvider(repo, charts),
		PanelPrintsChart: NewSeriesChartProvider(repo, charts),
	}
}

// MetricCard is a single titled value.
type MetricCard struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

func newMetricsProvider(repo DashboardRepository) Provider {
	return ProviderFunc(func(ctx context.Context, _ PanelContext) (PanelData, error) {
		m, err := repo.Metrics(ctx)
		if err != nil {
			return nil, err
		}
		return PanelData{
			"cards": []MetricCard{
				{Title: "Total Pages Printed", Value: formatCount(int64(m.TotalPagesPrinted))},
				{Title: "Total Revenue", Value: m.TotalRevenue.String()},
				{Title: "Pending Prints", Value: formatCount(int64(m.PendingPrints))},
				{Title: "Completed Prints", Value: formatCount(int64(m.CompletedPrints))},
			},
		}, nil
	})
}

func newStatsProvider(repo DashboardRepository) Provider {
	return ProviderFunc(func(ctx context.Context, _ PanelContext) (PanelData, error) {
		s, err := repo.DetailedStats(ctx)
		if err != nil {
			return nil, err
		}
		return PanelData{
			"cards": []MetricCard{
				{Title: "Average Pages per Order", Value: formatCount(int64(s.AveragePagesPerOrder))},
				{Title: "Customer Satisfaction", Value: s.CustomerSatisfaction},
				{Title: "Repeat Customers", Value: s.RepeatCustomers},
				{Title: "Avg. Processing Time", Value: s.AverageProcessingTime},
			},
		}, nil
	})
}

// QueueTab is one tab of the print queue table.
type QueueTab struct {
	Key     string      `json:"key"`
	Label   string      `json:"label"`
	Tasks   []PrintTask `json:"tasks"`
	Actions []string    `json:"actions,omitempty"`
}

func newQueueProvider(repo DashboardRepository) Provider {
	return ProviderFunc(func(ctx context.Context, _ PanelContext) (PanelData, error) {
		pending, err := repo.PendingTasks(ctx)
		if err != nil {
			return nil, fmt.Errorf("pending tasks: %w", err)
		}
		completed, err := repo.CompletedTasks(ctx)
		if err != nil {
			return nil, fmt.Errorf("completed tasks: %w", err)
		}
		return PanelData{
			"default_tab": queueTabPending,
			"tabs": []QueueTab{
				{Key: queueTabPending, Label: "Pending Tasks", Tasks: pending, Actions: append([]string(nil), pendingTaskActions...)},
				{Key: queueTabCompleted, Label: "Completed Tasks", Tasks: completed},
			},
		}, nil
	})
}

// SeriesChartProvider renders the series named in the panel configuration.
type SeriesChartProvider struct {
	repo     DashboardRepository
	renderer *EChartsProvider
}

// NewSeriesChartProvider builds a chart provider backed by repo.
func NewSeriesChartProvider(repo DashboardRepository, renderer *EChartsProvider) Provider {
	if renderer == nil {
		renderer = NewEChartsProvider("bar")
	}
	return &SeriesChartProvider{repo: repo, renderer: renderer}
}

// Fetch renders the configured series.
func (p *SeriesChartProvider) Fetch(ctx context.Context, meta PanelContext) (PanelData, error) {
	if p.repo == nil {
		return nil, fmt.Errorf("series chart provider: repository is required")
	}
	key := stringValue(meta.Definition.Configuration["series"], "")
	if key == "" {
		return nil, fmt.Errorf("series chart provider: %s has no series configured", meta.Definition.Code)
	}
	series, err := p.repo.Series(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("series chart provider: %w", err)
	}
	html, err := p.renderer.RenderSeries(meta.Definition.Title, series)
	if err != nil {
		return nil, err
	}
	return PanelData{
		"chart_html":   html,
		"chart_assets": p.renderer.Assets(),
		"chart_type":   p.renderer.chartType,
		"title":        meta.Definition.Title,
		"series":       series,
	}, nil
}

func stringValue(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}
