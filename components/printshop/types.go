package printshop

import "context"

// DashboardRepository serves the static data rendered by the admin dashboard.
// Implementations return copies so callers can never mutate the source data.
type DashboardRepository interface {
	Metrics(ctx context.Context) (DashboardMetrics, error)
	DetailedStats(ctx context.Context) (DetailedStats, error)
	PendingTasks(ctx context.Context) ([]PrintTask, error)
	CompletedTasks(ctx context.Context) ([]PrintTask, error)
	Series(ctx context.Context, key string) (ChartSeries, error)
}

// SessionStore owns the per-browser view state.
type SessionStore interface {
	Load(ctx context.Context, id string) (Session, error)
	Save(ctx context.Context, session Session) error
	Delete(ctx context.Context, id string) error
}

// Notifier delivers transient toast notifications.
type Notifier interface {
	Notify(ctx context.Context, toast Toast) error
}

// Money is a whole-unit currency amount.
type Money int64

// String renders the amount with a dollar prefix and grouped digits.
func (m Money) String() string {
	return "$" + formatCount(int64(m))
}

// DashboardMetrics holds the four summary cards.
type DashboardMetrics struct {
	TotalPagesPrinted int   `json:"total_pages_printed" yaml:"total_pages_printed"`
	TotalRevenue      Money `json:"total_revenue" yaml:"total_revenue"`
	PendingPrints     int   `json:"pending_prints" yaml:"pending_prints"`
	CompletedPrints   int   `json:"completed_prints" yaml:"completed_prints"`
}

// DetailedStats holds the secondary statistics cards.
type DetailedStats struct {
	AveragePagesPerOrder  int    `json:"average_pages_per_order" yaml:"average_pages_per_order"`
	CustomerSatisfaction  string `json:"customer_satisfaction" yaml:"customer_satisfaction"`
	RepeatCustomers       string `json:"repeat_customers" yaml:"repeat_customers"`
	AverageProcessingTime string `json:"average_processing_time" yaml:"average_processing_time"`
}

// PrintTask is a customer document awaiting or done printing.
type PrintTask struct {
	ID       int    `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Document string `json:"document" yaml:"document"`
	Pages    int    `json:"pages" yaml:"pages"`
}

// ChartPoint is a single labelled bar.
type ChartPoint struct {
	Label string `json:"label" yaml:"label"`
	Value int    `json:"value" yaml:"value"`
}

// ChartSeries is a labelled set of points plus its fixed visual configuration.
type ChartSeries struct {
	Key    string       `json:"key" yaml:"key"`
	Label  string       `json:"label" yaml:"label"`
	Color  string       `json:"color" yaml:"color"`
	Points []ChartPoint `json:"points" yaml:"points"`
}

// Labels returns the x axis labels in point order.
func (s ChartSeries) Labels() []string {
	labels := make([]string, len(s.Points))
	for i, p := range s.Points {
		labels[i] = p.Label
	}
	return labels
}

// Session is the view state owned by a single browser.
type Session struct {
	ID            string
	Authenticated bool
	Username      string
}

// Toast is a transient, non-blocking notification.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

// Layout describes the panels resolved for an authenticated dashboard view in
// display order.
type Layout struct {
	Panels []Panel `json:"panels"`
}

// Panel returns the first panel with the given code.
func (l Layout) Panel(code string) (Panel, bool) {
	for _, p := range l.Panels {
		if p.Code == code {
			return p, true
		}
	}
	return Panel{}, false
}

// Panel is a rendered dashboard section.
type Panel struct {
	Code  string    `json:"code"`
	Title string    `json:"title"`
	Data  PanelData `json:"data"`
}
