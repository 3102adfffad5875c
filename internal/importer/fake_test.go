package importer

import (
	"context"
	"errors"
	"strings"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// rejectError is returned by the fake for configured rejections and carries
// a message like a server would.
type rejectError struct{ msg string }

func (e *rejectError) Error() string       { return "rejected: " + e.msg }
func (e *rejectError) UserMessage() string { return e.msg }

// fakeGateway is an in-memory Gateway that counts calls and can be told to
// reject creates by dimension and name.
type fakeGateway struct {
	nextID int64

	modules    []domain.Module
	subModules []domain.SubModule
	priorities []domain.Priority
	statuses   []domain.AutomationStatus
	users      []domain.User
	tags       []domain.Tag
	testCases  []domain.TestCase

	// reject maps "dimension:lowercased name" to the rejection message.
	reject map[string]string

	creates map[string]int
	updates int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		reject:  make(map[string]string),
		creates: make(map[string]int),
	}
}

func (f *fakeGateway) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeGateway) check(dim, name string) error {
	f.creates[dim]++
	if msg, ok := f.reject[dim+":"+strings.ToLower(name)]; ok {
		return &rejectError{msg: msg}
	}
	if msg, ok := f.reject[dim+":*"]; ok {
		return &rejectError{msg: msg}
	}
	return nil
}

func (f *fakeGateway) seedPriority(name string) domain.Priority {
	p := domain.Priority{ID: f.id(), Name: name}
	f.priorities = append(f.priorities, p)
	return p
}

func (f *fakeGateway) seedStatus(name string) domain.AutomationStatus {
	s := domain.AutomationStatus{ID: f.id(), Name: name}
	f.statuses = append(f.statuses, s)
	return s
}

func (f *fakeGateway) ListModules(context.Context) ([]domain.Module, error) {
	return append([]domain.Module(nil), f.modules...), nil
}

func (f *fakeGateway) ListSubModules(context.Context) ([]domain.SubModule, error) {
	return append([]domain.SubModule(nil), f.subModules...), nil
}

func (f *fakeGateway) ListPriorities(context.Context) ([]domain.Priority, error) {
	return append([]domain.Priority(nil), f.priorities...), nil
}

func (f *fakeGateway) ListAutomationStatuses(context.Context) ([]domain.AutomationStatus, error) {
	return append([]domain.AutomationStatus(nil), f.statuses...), nil
}

func (f *fakeGateway) ListUsers(context.Context) ([]domain.User, error) {
	return append([]domain.User(nil), f.users...), nil
}

func (f *fakeGateway) ListTags(context.Context) ([]domain.Tag, error) {
	return append([]domain.Tag(nil), f.tags...), nil
}

func (f *fakeGateway) ListTestCases(context.Context) ([]domain.TestCase, error) {
	out := make([]domain.TestCase, len(f.testCases))
	for i, tc := range f.testCases {
		out[i] = f.view(tc.ID, tc.TestCaseInput)
	}
	return out, nil
}

func (f *fakeGateway) CreateModule(_ context.Context, m domain.Module) (domain.Module, error) {
	if err := f.check("module", m.Name); err != nil {
		return domain.Module{}, err
	}
	m.ID = f.id()
	f.modules = append(f.modules, m)
	return m, nil
}

func (f *fakeGateway) CreateSubModule(_ context.Context, sm domain.SubModule) (domain.SubModule, error) {
	if err := f.check("submodule", sm.Name); err != nil {
		return domain.SubModule{}, err
	}
	sm.ID = f.id()
	f.subModules = append(f.subModules, sm)
	return sm, nil
}

func (f *fakeGateway) CreatePriority(_ context.Context, p domain.Priority) (domain.Priority, error) {
	if err := f.check("priority", p.Name); err != nil {
		return domain.Priority{}, err
	}
	p.ID = f.id()
	f.priorities = append(f.priorities, p)
	return p, nil
}

func (f *fakeGateway) CreateAutomationStatus(_ context.Context, s domain.AutomationStatus) (domain.AutomationStatus, error) {
	if err := f.check("status", s.Name); err != nil {
		return domain.AutomationStatus{}, err
	}
	s.ID = f.id()
	f.statuses = append(f.statuses, s)
	return s, nil
}

func (f *fakeGateway) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	if err := f.check("user", u.Name); err != nil {
		return domain.User{}, err
	}
	u.ID = f.id()
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeGateway) CreateTag(_ context.Context, t domain.Tag) (domain.Tag, error) {
	if err := f.check("tag", t.Name); err != nil {
		return domain.Tag{}, err
	}
	t.ID = f.id()
	f.tags = append(f.tags, t)
	return t, nil
}

func (f *fakeGateway) CreateTestCase(_ context.Context, in domain.TestCaseInput) (domain.TestCase, error) {
	if err := f.check("testcase", in.TestcaseID); err != nil {
		return domain.TestCase{}, err
	}
	for _, tc := range f.testCases {
		if strings.EqualFold(tc.TestcaseID, in.TestcaseID) {
			return domain.TestCase{}, &rejectError{msg: "Test case with ID " + in.TestcaseID + " already exists"}
		}
	}
	tc := domain.TestCase{ID: f.id(), TestCaseInput: in}
	f.testCases = append(f.testCases, tc)
	return f.view(tc.ID, in), nil
}

func (f *fakeGateway) UpdateTestCase(_ context.Context, id int64, in domain.TestCaseInput) (domain.TestCase, error) {
	f.updates++
	for i, tc := range f.testCases {
		if tc.ID == id {
			f.testCases[i].TestCaseInput = in
			return f.view(id, in), nil
		}
	}
	return domain.TestCase{}, errors.New("not found")
}

// view fills in the display names the way the server's read model does.
func (f *fakeGateway) view(id int64, in domain.TestCaseInput) domain.TestCase {
	tc := domain.TestCase{ID: id, TestCaseInput: in}
	for _, m := range f.modules {
		if m.ID == in.ModuleID {
			tc.ModuleName = m.Name
		}
	}
	if in.SubModuleID != nil {
		for _, sm := range f.subModules {
			if sm.ID == *in.SubModuleID {
				tc.SubModuleName = sm.Name
			}
		}
	}
	for _, p := range f.priorities {
		if p.ID == in.PriorityID {
			tc.PriorityName = p.Name
		}
	}
	for _, s := range f.statuses {
		if s.ID == in.AutomationStatusID {
			tc.AutomationStatusName = s.Name
		}
	}
	if in.AutomatedByID != nil {
		for _, u := range f.users {
			if u.ID == *in.AutomatedByID {
				tc.AutomatedByName = u.Name
			}
		}
	}
	for _, tagID := range in.TagIDs {
		for _, t := range f.tags {
			if t.ID == tagID {
				tc.TagNames = append(tc.TagNames, t.Name)
			}
		}
	}
	return tc
}
