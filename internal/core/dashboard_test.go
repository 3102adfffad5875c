package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tcm/internal/domain"
)

func tcView(status, priority, subModule string) domain.TestCase {
	return domain.TestCase{
		AutomationStatusName: status,
		PriorityName:         priority,
		SubModuleName:        subModule,
	}
}

func TestBuildDashboard(t *testing.T) {
	cases := []domain.TestCase{
		tcView("Automated", "High", "Auth"),
		tcView("Not Automated", "Low", ""),
		tcView("In Progress", "High", "Auth"),
		tcView("Completed", "Low", "Billing"),
		tcView("Partially automated", "High", "Auth"),
		tcView("Blocked", "High", ""),
	}

	d := BuildDashboard(cases)

	assert.Equal(t, 6, d.TotalTestCases)
	// "Not Automated" contains "automated" and counts, as on the page.
	assert.Equal(t, 4, d.AutomatedCount)
	assert.Equal(t, 66.7, d.AutomationRate)
	assert.Equal(t, "66.7%", d.AutomationRateLabel())

	assert.Equal(t, []Count{
		{"Automated", 1}, {"Not Automated", 1}, {"In Progress", 1},
		{"Completed", 1}, {"Partially automated", 1}, {"Blocked", 1},
	}, d.ByStatus)
	assert.Equal(t, []Count{{"High", 4}, {"Low", 2}}, d.ByPriority)

	require.Len(t, d.SubModuleByPriority, 3)
	assert.Equal(t, Breakdown{SubModule: "Auth", Counts: []Count{{"High", 3}, {"Low", 0}}}, d.SubModuleByPriority[0])
	assert.Equal(t, Breakdown{SubModule: "Billing", Counts: []Count{{"High", 0}, {"Low", 1}}}, d.SubModuleByPriority[1])
	assert.Equal(t, Breakdown{SubModule: NoSubModule, Counts: []Count{{"High", 1}, {"Low", 1}}}, d.SubModuleByPriority[2])

	require.Len(t, d.SubModuleByStatus, 3)
	for _, b := range d.SubModuleByStatus {
		assert.Len(t, b.Counts, len(d.ByStatus))
	}
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(nil)
	assert.Zero(t, d.AutomationRate)
	assert.Equal(t, "0%", d.AutomationRateLabel())
	assert.NotNil(t, d.ByStatus)
	assert.Empty(t, d.SubModuleByStatus)
}

func TestServiceDashboard(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)
	r := seedRefs(t, s)

	_, err := s.CreateTestCase(ctx, r.input("TC1"))
	require.NoError(t, err)

	d, err := s.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.TotalTestCases)
	assert.Equal(t, 1, d.TotalModules)
	assert.Equal(t, 1, d.TotalSubModules)
	assert.Equal(t, 100.0, d.AutomationRate)
	assert.Equal(t, "100.0%", d.AutomationRateLabel())
}
