package apiclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tcm/internal/config"
	"github.com/JonMunkholm/tcm/internal/core"
	"github.com/JonMunkholm/tcm/internal/domain"
	"github.com/JonMunkholm/tcm/internal/importer"
	"github.com/JonMunkholm/tcm/internal/store"
	"github.com/JonMunkholm/tcm/internal/tabular"
	"github.com/JonMunkholm/tcm/internal/web"
)

// newTestClient serves the real HTTP stack over an in-memory store.
func newTestClient(t *testing.T) *Client {
	t.Helper()
	svc := core.NewService(store.NewMemory(), core.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	cfg := &config.Config{
		Server: config.ServerConfig{RequestTimeout: 10 * time.Second},
		Import: config.ImportConfig{MaxFileSize: 1 << 20, SkipHeader: true},
	}
	ts := httptest.NewServer(web.NewServer(svc, cfg, nil).Router())
	t.Cleanup(ts.Close)
	return New(ts.URL+"/", WithTimeout(5*time.Second))
}

const csvFile = `Testcase ID,Module,Sub Module/Functionality,Test Case Description,Pre-Conditions/Test Data,Test Script/Actions,Expected Result,Test Case Priority,Automation Status,Automated By,Automation Comments,Clubbed TC ID,Tags
TC1,Login >> Auth,,"Login, happy path",,Open page,Dashboard shown,High,Automated,Ann,,,"smoke, regression"
TC2,Login,Auth,Bad password,,Type wrong password,Error shown,High,,,,,smoke
TC1,login,,Updated description,,Open page,Dashboard shown,High,Automated,,,,
`

func TestClientImportPipeline(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	rows, err := tabular.Parse("cases.csv", []byte(csvFile), true)
	require.NoError(t, err)

	res, err := importer.New(c).Run(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 1, res.AutoCreated.Modules)
	assert.Equal(t, 1, res.AutoCreated.SubModules)
	assert.Equal(t, 2, res.AutoCreated.Tags)

	cases, err := c.ListTestCases(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, "Updated description", cases[0].TestCaseDescription)

	mods, err := c.ListModules(ctx)
	require.NoError(t, err)
	byModule, err := c.ListTestCasesByModule(ctx, mods[0].ID)
	require.NoError(t, err)
	assert.Len(t, byModule, 2)
	subs, err := c.ListSubModulesByModule(ctx, mods[0].ID)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	// re-importing the export only updates
	data, name, err := c.ExportCSV(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "testcases_export_"))
	rows, err = tabular.Parse(name, data, true)
	require.NoError(t, err)
	res, err = importer.New(c).Run(ctx, rows)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 2, res.Updated)
	assert.Equal(t, 0, res.Failed)

	d, err := c.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalTestCases)
	assert.Equal(t, 1, d.TotalModules)
}

func TestClientErrorsAreVerbatim(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	m, err := c.CreateModule(ctx, domain.Module{Name: "Login"})
	require.NoError(t, err)

	_, err = c.CreateModule(ctx, domain.Module{Name: "LOGIN"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Module already exists with name: LOGIN", apiErr.UserMessage())
	assert.Contains(t, apiErr.Error(), "HTTP 409")

	_, err = c.GetModule(ctx, 404)
	assert.True(t, IsNotFound(err))

	m.Description = "auth"
	m, err = c.UpdateModule(ctx, m.ID, m)
	require.NoError(t, err)
	assert.Equal(t, "auth", m.Description)

	sm, err := c.CreateSubModule(ctx, domain.SubModule{Name: "Auth", ModuleID: m.ID})
	require.NoError(t, err)
	require.NoError(t, c.DeleteSubModule(ctx, sm.ID))
	require.NoError(t, c.DeleteModule(ctx, m.ID))
	assert.True(t, IsNotFound(c.DeleteModule(ctx, m.ID)))
}

func TestClientTestCaseCRUD(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	m, err := c.CreateModule(ctx, domain.Module{Name: "Login"})
	require.NoError(t, err)
	p, err := c.CreatePriority(ctx, domain.Priority{Name: "High"})
	require.NoError(t, err)
	st, err := c.CreateAutomationStatus(ctx, domain.AutomationStatus{Name: "Manual"})
	require.NoError(t, err)
	u, err := c.CreateUser(ctx, domain.User{Name: "Ann"})
	require.NoError(t, err)
	tag, err := c.CreateTag(ctx, domain.Tag{Name: "smoke"})
	require.NoError(t, err)

	in := domain.TestCaseInput{
		TestcaseID:          "TC-9",
		ModuleID:            m.ID,
		TestCaseDescription: "d",
		TestScript:          "s",
		ExpectedResult:      "e",
		PriorityID:          p.ID,
		AutomationStatusID:  st.ID,
		AutomatedByID:       domain.Int64Ptr(u.ID),
		TagIDs:              []int64{tag.ID},
	}
	tc, err := c.CreateTestCase(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Ann", tc.AutomatedByName)
	assert.Equal(t, []string{"smoke"}, tc.TagNames)

	in.TestScript = ""
	_, err = c.UpdateTestCase(ctx, tc.ID, in)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Test script is required", apiErr.Message)

	got, err := c.GetTestCase(ctx, tc.ID)
	require.NoError(t, err)
	assert.Equal(t, "s", got.TestScript)

	require.NoError(t, c.DeleteTestCase(ctx, tc.ID))
	users, err := c.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	tags, err := c.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestClientServerSideImport(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	id, err := c.StartImport(ctx, "cases.csv", []byte(csvFile), true)
	require.NoError(t, err)

	res, err := c.ImportResult(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, res.Result)
	assert.Equal(t, 2, res.Result.Created)
	assert.Contains(t, res.Summary, "3 successful, 0 failed")

	p, err := c.ImportProgress(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.PhaseComplete, p.Phase)

	_, err = c.StartImport(ctx, "cases.txt", []byte(csvFile), true)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Unsupported file format. Please use CSV or Excel files.", apiErr.Message)

	assert.True(t, IsNotFound(c.CancelImport(ctx, "missing")))
}

func TestClientTemplateAndPing(t *testing.T) {
	ctx := context.Background()
	c := newTestClient(t)

	require.NoError(t, c.Ping(ctx))

	data, name, err := c.Template(ctx)
	require.NoError(t, err)
	assert.Equal(t, tabular.TemplateFileName, name)
	rows := tabular.ParseCSV(string(data))
	require.Len(t, rows, 2)
	assert.Equal(t, domain.Columns, rows[0])
}

func TestCheckResponsePlainText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := New(ts.URL).ListTags(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Equal(t, "upstream exploded", apiErr.Message)
	assert.Empty(t, apiErr.Code)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "a.csv", fileName(`attachment; filename="a.csv"`))
	assert.Equal(t, "", fileName("inline"))
}
