package core

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// NoSubModule labels test cases without a sub-module in breakdowns.
const NoSubModule = "No Sub-Module"

// automatedMarkers are matched case-insensitively as substrings of the
// status name; a hit counts the test case as automated.
var automatedMarkers = []string{"automated", "completed"}

// Count is the number of test cases carrying one name.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Breakdown splits the test cases of one sub-module by a dimension. Counts
// lists every series of the chart, zero included, in series order.
type Breakdown struct {
	SubModule string  `json:"subModule"`
	Counts    []Count `json:"counts"`
}

// Dashboard holds the aggregate statistics shown on the dashboard page.
type Dashboard struct {
	TotalTestCases  int     `json:"totalTestCases"`
	TotalModules    int     `json:"totalModules"`
	TotalSubModules int     `json:"totalSubModules"`
	AutomatedCount  int     `json:"automatedCount"`
	AutomationRate  float64 `json:"automationRate"` // percent, one decimal

	ByStatus            []Count     `json:"byStatus"`
	ByPriority          []Count     `json:"byPriority"`
	SubModuleByStatus   []Breakdown `json:"subModuleByStatus"`
	SubModuleByPriority []Breakdown `json:"subModuleByPriority"`
}

// AutomationRateLabel formats the rate the way the dashboard card does.
func (d Dashboard) AutomationRateLabel() string {
	if d.TotalTestCases == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", d.AutomationRate)
}

// Dashboard computes statistics over the current test cases.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	cases, err := s.store.ListTestCases(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list test cases: %w", err)
	}
	modules, err := s.store.ListModules(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list modules: %w", err)
	}
	subModules, err := s.store.ListSubModules(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list sub-modules: %w", err)
	}

	d := BuildDashboard(cases)
	d.TotalModules = len(modules)
	d.TotalSubModules = len(subModules)
	return d, nil
}

// BuildDashboard aggregates test cases. Module and sub-module totals are
// left for the caller, which knows the full catalogs.
func BuildDashboard(cases []domain.TestCase) Dashboard {
	d := Dashboard{TotalTestCases: len(cases)}

	status := func(tc domain.TestCase) string { return tc.AutomationStatusName }
	priority := func(tc domain.TestCase) string { return tc.PriorityName }

	for _, tc := range cases {
		if isAutomated(tc.AutomationStatusName) {
			d.AutomatedCount++
		}
	}
	if d.TotalTestCases > 0 {
		rate := float64(d.AutomatedCount) / float64(d.TotalTestCases) * 100
		d.AutomationRate = math.Round(rate*10) / 10
	}

	d.ByStatus = countBy(cases, status)
	d.ByPriority = countBy(cases, priority)
	d.SubModuleByStatus = breakdown(cases, status)
	d.SubModuleByPriority = breakdown(cases, priority)
	return d
}

func isAutomated(statusName string) bool {
	name := strings.ToLower(statusName)
	for _, m := range automatedMarkers {
		if strings.Contains(name, m) {
			return true
		}
	}
	return false
}

// countBy counts test cases per key, in order of first appearance.
func countBy(cases []domain.TestCase, key func(domain.TestCase) string) []Count {
	out := []Count{}
	index := map[string]int{}
	for _, tc := range cases {
		k := key(tc)
		i, ok := index[k]
		if !ok {
			i = len(out)
			index[k] = i
			out = append(out, Count{Name: k})
		}
		out[i].Count++
	}
	return out
}

// breakdown groups by sub-module (sorted by name) and then by key. Series
// follow first appearance across all test cases.
func breakdown(cases []domain.TestCase, key func(domain.TestCase) string) []Breakdown {
	series := countBy(cases, key)
	counts := map[string]map[string]int{}
	for _, tc := range cases {
		sm := tc.SubModuleName
		if sm == "" {
			sm = NoSubModule
		}
		if counts[sm] == nil {
			counts[sm] = map[string]int{}
		}
		counts[sm][key(tc)]++
	}

	names := make([]string, 0, len(counts))
	for sm := range counts {
		names = append(names, sm)
	}
	sort.Strings(names)

	out := make([]Breakdown, 0, len(names))
	for _, sm := range names {
		b := Breakdown{SubModule: sm, Counts: make([]Count, 0, len(series))}
		for _, s := range series {
			b.Counts = append(b.Counts, Count{Name: s.Name, Count: counts[sm][s.Name]})
		}
		out = append(out, b)
	}
	return out
}
