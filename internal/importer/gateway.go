// Package importer runs the bulk test-case import: rows are normalized,
// their reference names resolved with find-or-create semantics against
// in-memory catalogs, and each test case created or updated.
//
// The pipeline talks to persistence only through Gateway, so the same code
// runs in-process on the server (core.Service) and remotely from the CLI
// (apiclient.Client).
package importer

import (
	"context"
	"errors"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// Gateway is the set of list and create operations the pipeline needs.
type Gateway interface {
	ListModules(ctx context.Context) ([]domain.Module, error)
	ListSubModules(ctx context.Context) ([]domain.SubModule, error)
	ListPriorities(ctx context.Context) ([]domain.Priority, error)
	ListAutomationStatuses(ctx context.Context) ([]domain.AutomationStatus, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
	ListTestCases(ctx context.Context) ([]domain.TestCase, error)

	CreateModule(ctx context.Context, m domain.Module) (domain.Module, error)
	CreateSubModule(ctx context.Context, sm domain.SubModule) (domain.SubModule, error)
	CreatePriority(ctx context.Context, p domain.Priority) (domain.Priority, error)
	CreateAutomationStatus(ctx context.Context, s domain.AutomationStatus) (domain.AutomationStatus, error)
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)
	CreateTag(ctx context.Context, t domain.Tag) (domain.Tag, error)

	CreateTestCase(ctx context.Context, in domain.TestCaseInput) (domain.TestCase, error)
	UpdateTestCase(ctx context.Context, id int64, in domain.TestCaseInput) (domain.TestCase, error)
}

// messenger is implemented by errors that carry a message written for the
// person running the import, such as a rejection reason from the server.
type messenger interface {
	UserMessage() string
}

// messageOf returns the user-facing message carried by err, or fallback.
func messageOf(err error, fallback string) string {
	var m messenger
	if errors.As(err, &m) {
		if msg := m.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
