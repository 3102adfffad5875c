package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tcm/internal/domain"
)

type fixture struct {
	module   domain.Module
	sub      domain.SubModule
	priority domain.Priority
	status   domain.AutomationStatus
	user     domain.User
	tag      domain.Tag
}

func seed(t *testing.T, m *Memory) fixture {
	t.Helper()
	ctx := context.Background()
	var f fixture
	var err error

	f.module, err = m.CreateModule(ctx, domain.Module{Name: "Login"})
	require.NoError(t, err)
	f.sub, err = m.CreateSubModule(ctx, domain.SubModule{Name: "Auth", ModuleID: f.module.ID})
	require.NoError(t, err)
	f.priority, err = m.CreatePriority(ctx, domain.Priority{Name: "High"})
	require.NoError(t, err)
	f.status, err = m.CreateAutomationStatus(ctx, domain.AutomationStatus{Name: "Automated"})
	require.NoError(t, err)
	f.user, err = m.CreateUser(ctx, domain.User{Name: "Ann"})
	require.NoError(t, err)
	f.tag, err = m.CreateTag(ctx, domain.Tag{Name: "smoke", Color: "#fff"})
	require.NoError(t, err)
	return f
}

func (f fixture) input(id string) domain.TestCaseInput {
	return domain.TestCaseInput{
		TestcaseID:          id,
		ModuleID:            f.module.ID,
		SubModuleID:         domain.Int64Ptr(f.sub.ID),
		TestCaseDescription: "desc",
		TestScript:          "script",
		ExpectedResult:      "ok",
		PriorityID:          f.priority.ID,
		AutomationStatusID:  f.status.ID,
		AutomatedByID:       domain.Int64Ptr(f.user.ID),
		TagIDs:              []int64{f.tag.ID, f.tag.ID},
	}
}

func TestMemoryUniqueNames(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	f := seed(t, m)

	_, err := m.CreateModule(ctx, domain.Module{Name: "LOGIN"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = m.CreatePriority(ctx, domain.Priority{Name: "high"})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = m.CreateTag(ctx, domain.Tag{Name: "Smoke"})
	assert.ErrorIs(t, err, ErrDuplicate)

	// Sub-module names are unique per module only.
	other, err := m.CreateModule(ctx, domain.Module{Name: "Billing"})
	require.NoError(t, err)
	_, err = m.CreateSubModule(ctx, domain.SubModule{Name: "auth", ModuleID: f.module.ID})
	assert.ErrorIs(t, err, ErrDuplicate)
	sm, err := m.CreateSubModule(ctx, domain.SubModule{Name: "Auth", ModuleID: other.ID})
	require.NoError(t, err)
	assert.Equal(t, "Billing", sm.ModuleName)

	// Renaming to your own name is fine.
	_, err = m.UpdateModule(ctx, domain.Module{ID: f.module.ID, Name: "login"})
	assert.NoError(t, err)
}

func TestMemoryTestCaseLifecycle(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	f := seed(t, m)

	tc, err := m.CreateTestCase(ctx, f.input("TC1"))
	require.NoError(t, err)
	assert.Equal(t, "Login", tc.ModuleName)
	assert.Equal(t, "Auth", tc.SubModuleName)
	assert.Equal(t, "High", tc.PriorityName)
	assert.Equal(t, "Automated", tc.AutomationStatusName)
	assert.Equal(t, "Ann", tc.AutomatedByName)
	assert.Equal(t, []int64{f.tag.ID}, tc.TagIDs)
	assert.Equal(t, []string{"smoke"}, tc.TagNames)

	_, err = m.CreateTestCase(ctx, f.input("tc1"))
	assert.ErrorIs(t, err, ErrDuplicate)

	in := f.input("TC1")
	in.SubModuleID = nil
	in.TagIDs = nil
	updated, err := m.UpdateTestCase(ctx, tc.ID, in)
	require.NoError(t, err)
	assert.Empty(t, updated.SubModuleName)
	assert.Empty(t, updated.TagNames)

	byModule, err := m.ListTestCasesByModule(ctx, f.module.ID)
	require.NoError(t, err)
	assert.Len(t, byModule, 1)

	require.NoError(t, m.DeleteTestCase(ctx, tc.ID))
	_, err = m.GetTestCase(ctx, tc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryReferentialIntegrity(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	f := seed(t, m)

	bad := f.input("TC1")
	bad.PriorityID = 999
	_, err := m.CreateTestCase(ctx, bad)
	assert.ErrorIs(t, err, ErrNotFound)

	tc, err := m.CreateTestCase(ctx, f.input("TC1"))
	require.NoError(t, err)

	assert.ErrorIs(t, m.DeleteModule(ctx, f.module.ID), ErrInUse)
	assert.ErrorIs(t, m.DeletePriority(ctx, f.priority.ID), ErrInUse)
	assert.ErrorIs(t, m.DeleteUser(ctx, f.user.ID), ErrInUse)

	require.NoError(t, m.DeleteTag(ctx, f.tag.ID))
	got, err := m.GetTestCase(ctx, tc.ID)
	require.NoError(t, err)
	assert.Empty(t, got.TagIDs)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	seed(t, m)

	mods, err := m.ListModules(ctx)
	require.NoError(t, err)
	mods[0].Name = "changed"

	again, err := m.ListModules(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Login", again[0].Name)
}
