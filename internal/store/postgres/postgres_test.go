package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tcm/internal/domain"
	"github.com/JonMunkholm/tcm/internal/store"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		op   op
		want error
	}{
		{"no rows", pgx.ErrNoRows, opRead, store.ErrNotFound},
		{"unique", &pgconn.PgError{Code: codeUniqueViolation}, opWrite, store.ErrDuplicate},
		{"fk on write", &pgconn.PgError{Code: codeForeignKeyViolation}, opWrite, store.ErrNotFound},
		{"fk on delete", &pgconn.PgError{Code: codeForeignKeyViolation}, opDelete, store.ErrInUse},
		{"wrapped", fmt.Errorf("clear tags: %w", &pgconn.PgError{Code: codeUniqueViolation}), opWrite, store.ErrDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, mapError(tt.err, tt.op, "thing"), tt.want)
		})
	}

	assert.NoError(t, mapError(nil, opRead, "thing"))

	other := errors.New("boom")
	got := mapError(other, opRead, "thing")
	assert.ErrorIs(t, got, other)
	assert.False(t, errors.Is(got, store.ErrNotFound))
}

// openTestStore connects to TCM_TEST_DATABASE_URL, skipping when unset.
// The schema is applied and all tables are emptied.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TCM_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TCM_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.Migrate(ctx))
	_, err = pool.Exec(ctx, `TRUNCATE test_case_tags, test_cases, sub_modules, modules,
		priorities, automation_statuses, users, tags RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return s
}

func TestStoreIntegration(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mod, err := s.CreateModule(ctx, domain.Module{Name: "Login"})
	require.NoError(t, err)
	_, err = s.CreateModule(ctx, domain.Module{Name: "LOGIN"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	sm, err := s.CreateSubModule(ctx, domain.SubModule{Name: "Auth", ModuleID: mod.ID})
	require.NoError(t, err)
	assert.Equal(t, "Login", sm.ModuleName)

	pri, err := s.CreatePriority(ctx, domain.Priority{Name: "High"})
	require.NoError(t, err)
	st, err := s.CreateAutomationStatus(ctx, domain.AutomationStatus{Name: "Automated"})
	require.NoError(t, err)
	smoke, err := s.CreateTag(ctx, domain.Tag{Name: "smoke", Color: "#6366f1"})
	require.NoError(t, err)
	reg, err := s.CreateTag(ctx, domain.Tag{Name: "regression"})
	require.NoError(t, err)

	in := domain.TestCaseInput{
		TestcaseID:          "TC1",
		ModuleID:            mod.ID,
		SubModuleID:         domain.Int64Ptr(sm.ID),
		TestCaseDescription: "desc",
		TestScript:          "script",
		ExpectedResult:      "ok",
		PriorityID:          pri.ID,
		AutomationStatusID:  st.ID,
		TagIDs:              []int64{reg.ID, smoke.ID, reg.ID},
	}
	tc, err := s.CreateTestCase(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Auth", tc.SubModuleName)
	assert.Equal(t, []int64{reg.ID, smoke.ID}, tc.TagIDs)
	assert.Equal(t, []string{"regression", "smoke"}, tc.TagNames)
	assert.Empty(t, tc.PreConditions)

	_, err = s.CreateTestCase(ctx, domain.TestCaseInput{
		TestcaseID: "tc1", ModuleID: mod.ID, TestCaseDescription: "d", TestScript: "s",
		ExpectedResult: "e", PriorityID: pri.ID, AutomationStatusID: st.ID,
	})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	in.TagIDs = nil
	in.PreConditions = "pre"
	updated, err := s.UpdateTestCase(ctx, tc.ID, in)
	require.NoError(t, err)
	assert.Empty(t, updated.TagIDs)
	assert.Equal(t, "pre", updated.PreConditions)

	assert.ErrorIs(t, s.DeleteModule(ctx, mod.ID), store.ErrInUse)

	byModule, err := s.ListTestCasesByModule(ctx, mod.ID)
	require.NoError(t, err)
	assert.Len(t, byModule, 1)

	require.NoError(t, s.DeleteTestCase(ctx, tc.ID))
	_, err = s.GetTestCase(ctx, tc.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
