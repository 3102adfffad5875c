// Package store defines persistence for reference data and test cases.
//
// Implementations enforce the uniqueness constraints (case-insensitive
// names per dimension, sub-module names per module, testcase IDs) and
// referential integrity, reporting violations with ErrDuplicate and
// ErrInUse. Friendlier, field-level checks live in the service layer.
package store

import (
	"context"
	"errors"

	"github.com/JonMunkholm/tcm/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	ErrInUse     = errors.New("record is referenced by other records")
)

// Store is the persistence contract used by core.Service.
type Store interface {
	ListModules(ctx context.Context) ([]domain.Module, error)
	GetModule(ctx context.Context, id int64) (domain.Module, error)
	CreateModule(ctx context.Context, m domain.Module) (domain.Module, error)
	UpdateModule(ctx context.Context, m domain.Module) (domain.Module, error)
	DeleteModule(ctx context.Context, id int64) error

	ListSubModules(ctx context.Context) ([]domain.SubModule, error)
	ListSubModulesByModule(ctx context.Context, moduleID int64) ([]domain.SubModule, error)
	GetSubModule(ctx context.Context, id int64) (domain.SubModule, error)
	CreateSubModule(ctx context.Context, sm domain.SubModule) (domain.SubModule, error)
	UpdateSubModule(ctx context.Context, sm domain.SubModule) (domain.SubModule, error)
	DeleteSubModule(ctx context.Context, id int64) error

	ListPriorities(ctx context.Context) ([]domain.Priority, error)
	GetPriority(ctx context.Context, id int64) (domain.Priority, error)
	CreatePriority(ctx context.Context, p domain.Priority) (domain.Priority, error)
	UpdatePriority(ctx context.Context, p domain.Priority) (domain.Priority, error)
	DeletePriority(ctx context.Context, id int64) error

	ListAutomationStatuses(ctx context.Context) ([]domain.AutomationStatus, error)
	GetAutomationStatus(ctx context.Context, id int64) (domain.AutomationStatus, error)
	CreateAutomationStatus(ctx context.Context, s domain.AutomationStatus) (domain.AutomationStatus, error)
	UpdateAutomationStatus(ctx context.Context, s domain.AutomationStatus) (domain.AutomationStatus, error)
	DeleteAutomationStatus(ctx context.Context, id int64) error

	ListUsers(ctx context.Context) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (domain.User, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	UpdateUser(ctx context.Context, u domain.User) (domain.User, error)
	DeleteUser(ctx context.Context, id int64) error

	ListTags(ctx context.Context) ([]domain.Tag, error)
	GetTag(ctx context.Context, id int64) (domain.Tag, error)
	CreateTag(ctx context.Context, t domain.Tag) (domain.Tag, error)
	UpdateTag(ctx context.Context, t domain.Tag) (domain.Tag, error)
	DeleteTag(ctx context.Context, id int64) error

	// Test case reads include the display names of every reference.
	ListTestCases(ctx context.Context) ([]domain.TestCase, error)
	ListTestCasesByModule(ctx context.Context, moduleID int64) ([]domain.TestCase, error)
	GetTestCase(ctx context.Context, id int64) (domain.TestCase, error)
	CreateTestCase(ctx context.Context, in domain.TestCaseInput) (domain.TestCase, error)
	UpdateTestCase(ctx context.Context, id int64, in domain.TestCaseInput) (domain.TestCase, error)
	DeleteTestCase(ctx context.Context, id int64) error

	Ping(ctx context.Context) error
	Close()
}
