package apiclient

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// REST collection paths.
const (
	pathModules    = "/api/modules"
	pathSubModules = "/api/submodules"
	pathPriorities = "/api/priorities"
	pathStatuses   = "/api/automation-statuses"
	pathUsers      = "/api/automated-by"
	pathTags       = "/api/tags"
	pathTestCases  = "/api/testcases"
)

func list[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	var out []T
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

func get[T any](ctx context.Context, c *Client, path string, id int64) (T, error) {
	var out T
	err := c.do(ctx, http.MethodGet, idPath(path, id), nil, &out)
	return out, err
}

func create[In, Out any](ctx context.Context, c *Client, path string, in In) (Out, error) {
	var out Out
	err := c.do(ctx, http.MethodPost, path, in, &out)
	return out, err
}

func update[In, Out any](ctx context.Context, c *Client, path string, id int64, in In) (Out, error) {
	var out Out
	err := c.do(ctx, http.MethodPut, idPath(path, id), in, &out)
	return out, err
}

func (c *Client) remove(ctx context.Context, path string, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath(path, id), nil, nil)
}

func (c *Client) ListModules(ctx context.Context) ([]domain.Module, error) {
	return list[domain.Module](ctx, c, pathModules)
}

func (c *Client) GetModule(ctx context.Context, id int64) (domain.Module, error) {
	return get[domain.Module](ctx, c, pathModules, id)
}

func (c *Client) CreateModule(ctx context.Context, m domain.Module) (domain.Module, error) {
	return create[domain.Module, domain.Module](ctx, c, pathModules, m)
}

func (c *Client) UpdateModule(ctx context.Context, id int64, m domain.Module) (domain.Module, error) {
	return update[domain.Module, domain.Module](ctx, c, pathModules, id, m)
}

func (c *Client) DeleteModule(ctx context.Context, id int64) error {
	return c.remove(ctx, pathModules, id)
}

func (c *Client) ListSubModules(ctx context.Context) ([]domain.SubModule, error) {
	return list[domain.SubModule](ctx, c, pathSubModules)
}

// ListSubModulesByModule lists the sub-modules of one module.
func (c *Client) ListSubModulesByModule(ctx context.Context, moduleID int64) ([]domain.SubModule, error) {
	return list[domain.SubModule](ctx, c, idPath(pathSubModules+"/module", moduleID))
}

func (c *Client) CreateSubModule(ctx context.Context, sm domain.SubModule) (domain.SubModule, error) {
	return create[domain.SubModule, domain.SubModule](ctx, c, pathSubModules, sm)
}

func (c *Client) DeleteSubModule(ctx context.Context, id int64) error {
	return c.remove(ctx, pathSubModules, id)
}

func (c *Client) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	return list[domain.Priority](ctx, c, pathPriorities)
}

func (c *Client) CreatePriority(ctx context.Context, p domain.Priority) (domain.Priority, error) {
	return create[domain.Priority, domain.Priority](ctx, c, pathPriorities, p)
}

func (c *Client) ListAutomationStatuses(ctx context.Context) ([]domain.AutomationStatus, error) {
	return list[domain.AutomationStatus](ctx, c, pathStatuses)
}

func (c *Client) CreateAutomationStatus(ctx context.Context, s domain.AutomationStatus) (domain.AutomationStatus, error) {
	return create[domain.AutomationStatus, domain.AutomationStatus](ctx, c, pathStatuses, s)
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	return list[domain.User](ctx, c, pathUsers)
}

func (c *Client) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	return create[domain.User, domain.User](ctx, c, pathUsers, u)
}

func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return list[domain.Tag](ctx, c, pathTags)
}

func (c *Client) CreateTag(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	return create[domain.Tag, domain.Tag](ctx, c, pathTags, t)
}

func (c *Client) ListTestCases(ctx context.Context) ([]domain.TestCase, error) {
	return list[domain.TestCase](ctx, c, pathTestCases)
}

// ListTestCasesByModule lists the test cases of one module.
func (c *Client) ListTestCasesByModule(ctx context.Context, moduleID int64) ([]domain.TestCase, error) {
	return list[domain.TestCase](ctx, c, idPath(pathTestCases+"/module", moduleID))
}

func (c *Client) GetTestCase(ctx context.Context, id int64) (domain.TestCase, error) {
	return get[domain.TestCase](ctx, c, pathTestCases, id)
}

func (c *Client) CreateTestCase(ctx context.Context, in domain.TestCaseInput) (domain.TestCase, error) {
	return create[domain.TestCaseInput, domain.TestCase](ctx, c, pathTestCases, in)
}

func (c *Client) UpdateTestCase(ctx context.Context, id int64, in domain.TestCaseInput) (domain.TestCase, error) {
	return update[domain.TestCaseInput, domain.TestCase](ctx, c, pathTestCases, id, in)
}

func (c *Client) DeleteTestCase(ctx context.Context, id int64) error {
	return c.remove(ctx, pathTestCases, id)
}
