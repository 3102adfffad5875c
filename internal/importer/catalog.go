package importer

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// Catalogs is the in-memory view of every reference dimension and of the
// existing test cases. It is loaded once per run, appended to after each
// successful create, and reloaded when the run ends.
type Catalogs struct {
	Modules    []domain.Module
	SubModules []domain.SubModule
	Priorities []domain.Priority
	Statuses   []domain.AutomationStatus
	Users      []domain.User
	Tags       []domain.Tag
	TestCases  []domain.TestCase
}

// LoadCatalogs fetches every dimension from gw.
func LoadCatalogs(ctx context.Context, gw Gateway) (*Catalogs, error) {
	var (
		c   Catalogs
		err error
	)
	if c.Modules, err = gw.ListModules(ctx); err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	if c.SubModules, err = gw.ListSubModules(ctx); err != nil {
		return nil, fmt.Errorf("load sub-modules: %w", err)
	}
	if c.Priorities, err = gw.ListPriorities(ctx); err != nil {
		return nil, fmt.Errorf("load priorities: %w", err)
	}
	if c.Statuses, err = gw.ListAutomationStatuses(ctx); err != nil {
		return nil, fmt.Errorf("load automation statuses: %w", err)
	}
	if c.Users, err = gw.ListUsers(ctx); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if c.Tags, err = gw.ListTags(ctx); err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}
	if c.TestCases, err = gw.ListTestCases(ctx); err != nil {
		return nil, fmt.Errorf("load test cases: %w", err)
	}
	return &c, nil
}
