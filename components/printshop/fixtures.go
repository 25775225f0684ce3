package printshop

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	fixturesVersionV1 = "1"
	// FixturesVersion exposes the current fixtures format version for tooling.
	FixturesVersion = fixturesVersionV1
)

// Fixtures models the YAML document holding every static dashboard value.
type Fixtures struct {
	Version   string           `json:"version" yaml:"version"`
	Metrics   DashboardMetrics `json:"metrics" yaml:"metrics"`
	Stats     DetailedStats    `json:"stats" yaml:"stats"`
	Pending   []PrintTask      `json:"pending" yaml:"pending"`
	Completed []PrintTask      `json:"completed" yaml:"completed"`
	Series    []ChartSeries    `json:"series" yaml:"series"`
	Source    string           `json:"-" yaml:"-"`
}

// ReadFixtures loads fixtures from disk.
func ReadFixtures(path string) (*Fixtures, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("printshop: open fixtures %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeFixtures(f)
	if err != nil {
		return nil, fmt.Errorf("printshop: decode fixtures %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeFixtures reads fixtures from any reader.
func DecodeFixtures(r io.Reader) (*Fixtures, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc Fixtures
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("printshop: fixtures document is empty")
		}
		return nil, fmt.Errorf("printshop: parse fixtures: %w", err)
	}
	if doc.Version == "" {
		doc.Version = fixturesVersionV1
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// EncodeFixtures writes the document as YAML.
func EncodeFixtures(w io.Writer, doc *Fixtures) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("printshop: encode fixtures: %w", err)
	}
	return encoder.Close()
}

// Validate enforces unique task ids, disjoint queues and unique series keys.
// Every series a default chart panel renders must be present with points.
func (doc *Fixtures) Validate() error {
	if doc.Version != fixturesVersionV1 {
		return fmt.Errorf("printshop: unsupported fixtures version %q", doc.Version)
	}
	seen := make(map[int]string, len(doc.Pending)+len(doc.Completed))
	check := func(list string, tasks []PrintTask) error {
		for idx, task := range tasks {
			if task.Name == "" || task.Document == "" {
				return fmt.Errorf("printshop: %s task at index %d is missing name or document", list, idx)
			}
			if task.Pages <= 0 {
				return fmt.Errorf("printshop: %s task %d has non-positive page count", list, task.ID)
			}
			if prev, ok := seen[task.ID]; ok {
				return fmt.Errorf("printshop: task id %d appears in %s and %s", task.ID, prev, list)
			}
			seen[task.ID] = list
		}
		return nil
	}
	if err := check("pending", doc.Pending); err != nil {
		return err
	}
	if err := check("completed", doc.Completed); err != nil {
		return err
	}
	keys := make(map[string]struct{}, len(doc.Series))
	for idx, series := range doc.Series {
		if series.Key == "" {
			return fmt.Errorf("printshop: series at index %d is missing key", idx)
		}
		if _, ok := keys[series.Key]; ok {
			return fmt.Errorf("printshop: duplicate series key %s", series.Key)
		}
		keys[series.Key] = struct{}{}
	}
	for _, key := range requiredSeriesKeys() {
		series, ok := doc.series(key)
		if !ok {
			return fmt.Errorf("printshop: series %s is required by the dashboard charts", key)
		}
		if len(series.Points) == 0 {
			return fmt.Errorf("printshop: series %s has no points", key)
		}
	}
	return nil
}

func (doc *Fixtures) series(key string) (ChartSeries, bool) {
	for _, series := range doc.Series {
		if series.Key == key {
			return series, true
		}
	}
	return ChartSeries{}, false
}

func requiredSeriesKeys() []string {
	var keys []string
	for _, def := range defaultPanelDefinitions {
		if key := stringValue(def.Configuration["series"], ""); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
