package printshop

const (
	// SeriesPrintVolume is the series key for the monthly print counts chart.
	SeriesPrintVolume = "prints"
	// SeriesMonthlySales is the series key for the monthly revenue chart.
	SeriesMonthlySales = "sales"
)

// DefaultFixtures returns the demo data shown on the admin dashboard.
func DefaultFixtures() *Fixtures {
	return &Fixtures{
		Version: FixturesVersion,
		Metrics: DashboardMetrics{
			TotalPagesPrinted: 15000,
			TotalRevenue:      5000,
			PendingPrints:     25,
			CompletedPrints:   75,
		},
		Stats: DetailedStats{
			AveragePagesPerOrder:  18,
			CustomerSatisfaction:  "4.8/5",
			RepeatCustomers:       "68%",
			AverageProcessingTime: "2.3 hours",
		},
		Pending: []PrintTask{
			{ID: 1, Name: "John Doe", Document: "Report.pdf", Pages: 10},
			{ID: 2, Name: "Jane Smith", Document: "Presentation.pptx", Pages: 25},
			{ID: 3, Name: "Bob Johnson", Document: "Invoice.docx", Pages: 2},
		},
		Completed: []PrintTask{
			{ID: 4, Name: "Alice Brown", Document: "Thesis.pdf", Pages: 100},
			{ID: 5, Name: "Charlie Davis", Document: "Flyer.jpg", Pages: 1},
		},
		Series: []ChartSeries{
			{
				Key:   SeriesMonthlySales,
				Label: "Monthly Sales",
				Color: "#2a9d90",
				Points: []ChartPoint{
					{Label: "Jan", Value: 4000},
					{Label: "Feb", Value: 3000},
					{Label: "Mar", Value: 5000},
					{Label: "Apr", Value: 2800},
					{Label: "May", Value: 2000},
					{Label: "Jun", Value: 6000},
					{Label: "Jul", Value: 5500},
					{Label: "Aug", Value: 4800},
					{Label: "Sep", Value: 5200},
					{Label: "Oct", Value: 4700},
					{Label: "Nov", Value: 5900},
					{Label: "Dec", Value: 7000},
				},
			},
			{
				Key:   SeriesPrintVolume,
				Label: "Number of Prints",
				Color: "#e76e50",
				Points: []ChartPoint{
					{Label: "Jan", Value: 400},
					{Label: "Feb", Value: 300},
					{Label: "Mar", Value: 500},
					{Label: "Apr", Value: 280},
					{Label: "May", Value: 200},
					{Label: "Jun", Value: 600},
				},
			},
		},
	}
}
