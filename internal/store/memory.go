package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// Memory is a Store held in process memory. It backs tests and servers
// started with STORE_DRIVER=memory.
type Memory struct {
	mu     sync.RWMutex
	nextID int64

	modules    []domain.Module
	subModules []domain.SubModule
	priorities []domain.Priority
	statuses   []domain.AutomationStatus
	users      []domain.User
	tags       []domain.Tag
	testCases  []testCaseRow
}

type testCaseRow struct {
	id int64
	in domain.TestCaseInput
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) id() int64 {
	m.nextID++
	return m.nextID
}

func indexOf[T any](rows []T, match func(T) bool) int {
	for i, r := range rows {
		if match(r) {
			return i
		}
	}
	return -1
}

func clone[T any](rows []T) []T {
	return append(make([]T, 0, len(rows)), rows...)
}

func remove[T any](rows []T, i int) []T {
	return append(rows[:i], rows[i+1:]...)
}

// nameTaken reports whether another row (id != self) already uses name.
func nameTaken[T any](rows []T, self int64, key func(T) (int64, string), name string) bool {
	return indexOf(rows, func(r T) bool {
		id, n := key(r)
		return id != self && domain.SameName(n, name)
	}) >= 0
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

// --- modules ---

func moduleKey(m domain.Module) (int64, string) { return m.ID, m.Name }

func (m *Memory) ListModules(context.Context) ([]domain.Module, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.modules), nil
}

func (m *Memory) GetModule(_ context.Context, id int64) (domain.Module, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.modules, func(r domain.Module) bool { return r.ID == id })
	if i < 0 {
		return domain.Module{}, notFound("module", id)
	}
	return m.modules[i], nil
}

func (m *Memory) CreateModule(_ context.Context, mod domain.Module) (domain.Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if nameTaken(m.modules, 0, moduleKey, mod.Name) {
		return domain.Module{}, fmt.Errorf("module %q: %w", mod.Name, ErrDuplicate)
	}
	mod.ID = m.id()
	m.modules = append(m.modules, mod)
	return mod, nil
}

func (m *Memory) UpdateModule(_ context.Context, mod domain.Module) (domain.Module, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.modules, func(r domain.Module) bool { return r.ID == mod.ID })
	if i < 0 {
		return domain.Module{}, notFound("module", mod.ID)
	}
	if nameTaken(m.modules, mod.ID, moduleKey, mod.Name) {
		return domain.Module{}, fmt.Errorf("module %q: %w", mod.Name, ErrDuplicate)
	}
	m.modules[i] = mod
	return mod, nil
}

func (m *Memory) DeleteModule(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.modules, func(r domain.Module) bool { return r.ID == id })
	if i < 0 {
		return notFound("module", id)
	}
	if indexOf(m.subModules, func(r domain.SubModule) bool { return r.ModuleID == id }) >= 0 ||
		indexOf(m.testCases, func(r testCaseRow) bool { return r.in.ModuleID == id }) >= 0 {
		return fmt.Errorf("module %d: %w", id, ErrInUse)
	}
	m.modules = remove(m.modules, i)
	return nil
}

// --- sub-modules ---

func (m *Memory) subModuleView(sm domain.SubModule) domain.SubModule {
	if i := indexOf(m.modules, func(r domain.Module) bool { return r.ID == sm.ModuleID }); i >= 0 {
		sm.ModuleName = m.modules[i].Name
	}
	return sm
}

func (m *Memory) subModuleNameTaken(self, moduleID int64, name string) bool {
	return indexOf(m.subModules, func(r domain.SubModule) bool {
		return r.ID != self && r.ModuleID == moduleID && domain.SameName(r.Name, name)
	}) >= 0
}

func (m *Memory) ListSubModules(context.Context) ([]domain.SubModule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.SubModule, 0, len(m.subModules))
	for _, sm := range m.subModules {
		out = append(out, m.subModuleView(sm))
	}
	return out, nil
}

func (m *Memory) ListSubModulesByModule(_ context.Context, moduleID int64) ([]domain.SubModule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.SubModule, 0)
	for _, sm := range m.subModules {
		if sm.ModuleID == moduleID {
			out = append(out, m.subModuleView(sm))
		}
	}
	return out, nil
}

func (m *Memory) GetSubModule(_ context.Context, id int64) (domain.SubModule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.subModules, func(r domain.SubModule) bool { return r.ID == id })
	if i < 0 {
		return domain.SubModule{}, notFound("sub-module", id)
	}
	return m.subModuleView(m.subModules[i]), nil
}

func (m *Memory) CreateSubModule(_ context.Context, sm domain.SubModule) (domain.SubModule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if indexOf(m.modules, func(r domain.Module) bool { return r.ID == sm.ModuleID }) < 0 {
		return domain.SubModule{}, notFound("module", sm.ModuleID)
	}
	if m.subModuleNameTaken(0, sm.ModuleID, sm.Name) {
		return domain.SubModule{}, fmt.Errorf("sub-module %q: %w", sm.Name, ErrDuplicate)
	}
	sm.ID = m.id()
	sm.ModuleName = ""
	m.subModules = append(m.subModules, sm)
	return m.subModuleView(sm), nil
}

func (m *Memory) UpdateSubModule(_ context.Context, sm domain.SubModule) (domain.SubModule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.subModules, func(r domain.SubModule) bool { return r.ID == sm.ID })
	if i < 0 {
		return domain.SubModule{}, notFound("sub-module", sm.ID)
	}
	if indexOf(m.modules, func(r domain.Module) bool { return r.ID == sm.ModuleID }) < 0 {
		return domain.SubModule{}, notFound("module", sm.ModuleID)
	}
	if m.subModuleNameTaken(sm.ID, sm.ModuleID, sm.Name) {
		return domain.SubModule{}, fmt.Errorf("sub-module %q: %w", sm.Name, ErrDuplicate)
	}
	sm.ModuleName = ""
	m.subModules[i] = sm
	return m.subModuleView(sm), nil
}

func (m *Memory) DeleteSubModule(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.subModules, func(r domain.SubModule) bool { return r.ID == id })
	if i < 0 {
		return notFound("sub-module", id)
	}
	if indexOf(m.testCases, func(r testCaseRow) bool {
		return r.in.SubModuleID != nil && *r.in.SubModuleID == id
	}) >= 0 {
		return fmt.Errorf("sub-module %d: %w", id, ErrInUse)
	}
	m.subModules = remove(m.subModules, i)
	return nil
}

// --- priorities ---

func priorityKey(p domain.Priority) (int64, string) { return p.ID, p.Name }

func (m *Memory) ListPriorities(context.Context) ([]domain.Priority, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.priorities), nil
}

func (m *Memory) GetPriority(_ context.Context, id int64) (domain.Priority, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.priorities, func(r domain.Priority) bool { return r.ID == id })
	if i < 0 {
		return domain.Priority{}, notFound("priority", id)
	}
	return m.priorities[i], nil
}

func (m *Memory) CreatePriority(_ context.Context, p domain.Priority) (domain.Priority, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if nameTaken(m.priorities, 0, priorityKey, p.Name) {
		return domain.Priority{}, fmt.Errorf("priority %q: %w", p.Name, ErrDuplicate)
	}
	p.ID = m.id()
	m.priorities = append(m.priorities, p)
	return p, nil
}

func (m *Memory) UpdatePriority(_ context.Context, p domain.Priority) (domain.Priority, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.priorities, func(r domain.Priority) bool { return r.ID == p.ID })
	if i < 0 {
		return domain.Priority{}, notFound("priority", p.ID)
	}
	if nameTaken(m.priorities, p.ID, priorityKey, p.Name) {
		return domain.Priority{}, fmt.Errorf("priority %q: %w", p.Name, ErrDuplicate)
	}
	m.priorities[i] = p
	return p, nil
}

func (m *Memory) DeletePriority(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.priorities, func(r domain.Priority) bool { return r.ID == id })
	if i < 0 {
		return notFound("priority", id)
	}
	if indexOf(m.testCases, func(r testCaseRow) bool { return r.in.PriorityID == id }) >= 0 {
		return fmt.Errorf("priority %d: %w", id, ErrInUse)
	}
	m.priorities = remove(m.priorities, i)
	return nil
}

// --- automation statuses ---

func statusKey(s domain.AutomationStatus) (int64, string) { return s.ID, s.Name }

func (m *Memory) ListAutomationStatuses(context.Context) ([]domain.AutomationStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.statuses), nil
}

func (m *Memory) GetAutomationStatus(_ context.Context, id int64) (domain.AutomationStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.statuses, func(r domain.AutomationStatus) bool { return r.ID == id })
	if i < 0 {
		return domain.AutomationStatus{}, notFound("automation status", id)
	}
	return m.statuses[i], nil
}

func (m *Memory) CreateAutomationStatus(_ context.Context, s domain.AutomationStatus) (domain.AutomationStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if nameTaken(m.statuses, 0, statusKey, s.Name) {
		return domain.AutomationStatus{}, fmt.Errorf("automation status %q: %w", s.Name, ErrDuplicate)
	}
	s.ID = m.id()
	m.statuses = append(m.statuses, s)
	return s, nil
}

func (m *Memory) UpdateAutomationStatus(_ context.Context, s domain.AutomationStatus) (domain.AutomationStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.statuses, func(r domain.AutomationStatus) bool { return r.ID == s.ID })
	if i < 0 {
		return domain.AutomationStatus{}, notFound("automation status", s.ID)
	}
	if nameTaken(m.statuses, s.ID, statusKey, s.Name) {
		return domain.AutomationStatus{}, fmt.Errorf("automation status %q: %w", s.Name, ErrDuplicate)
	}
	m.statuses[i] = s
	return s, nil
}

func (m *Memory) DeleteAutomationStatus(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.statuses, func(r domain.AutomationStatus) bool { return r.ID == id })
	if i < 0 {
		return notFound("automation status", id)
	}
	if indexOf(m.testCases, func(r testCaseRow) bool { return r.in.AutomationStatusID == id }) >= 0 {
		return fmt.Errorf("automation status %d: %w", id, ErrInUse)
	}
	m.statuses = remove(m.statuses, i)
	return nil
}

// --- users ---

func userKey(u domain.User) (int64, string) { return u.ID, u.Name }

func (m *Memory) ListUsers(context.Context) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.users), nil
}

func (m *Memory) GetUser(_ context.Context, id int64) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.users, func(r domain.User) bool { return r.ID == id })
	if i < 0 {
		return domain.User{}, notFound("user", id)
	}
	return m.users[i], nil
}

func (m *Memory) CreateUser(_ context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if nameTaken(m.users, 0, userKey, u.Name) {
		return domain.User{}, fmt.Errorf("user %q: %w", u.Name, ErrDuplicate)
	}
	u.ID = m.id()
	m.users = append(m.users, u)
	return u, nil
}

func (m *Memory) UpdateUser(_ context.Context, u domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.users, func(r domain.User) bool { return r.ID == u.ID })
	if i < 0 {
		return domain.User{}, notFound("user", u.ID)
	}
	if nameTaken(m.users, u.ID, userKey, u.Name) {
		return domain.User{}, fmt.Errorf("user %q: %w", u.Name, ErrDuplicate)
	}
	m.users[i] = u
	return u, nil
}

func (m *Memory) DeleteUser(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.users, func(r domain.User) bool { return r.ID == id })
	if i < 0 {
		return notFound("user", id)
	}
	if indexOf(m.testCases, func(r testCaseRow) bool {
		return r.in.AutomatedByID != nil && *r.in.AutomatedByID == id
	}) >= 0 {
		return fmt.Errorf("user %d: %w", id, ErrInUse)
	}
	m.users = remove(m.users, i)
	return nil
}

// --- tags ---

func tagKey(t domain.Tag) (int64, string) { return t.ID, t.Name }

func (m *Memory) ListTags(context.Context) ([]domain.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.tags), nil
}

func (m *Memory) GetTag(_ context.Context, id int64) (domain.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.tags, func(r domain.Tag) bool { return r.ID == id })
	if i < 0 {
		return domain.Tag{}, notFound("tag", id)
	}
	return m.tags[i], nil
}

func (m *Memory) CreateTag(_ context.Context, t domain.Tag) (domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if nameTaken(m.tags, 0, tagKey, t.Name) {
		return domain.Tag{}, fmt.Errorf("tag %q: %w", t.Name, ErrDuplicate)
	}
	t.ID = m.id()
	m.tags = append(m.tags, t)
	return t, nil
}

func (m *Memory) UpdateTag(_ context.Context, t domain.Tag) (domain.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.tags, func(r domain.Tag) bool { return r.ID == t.ID })
	if i < 0 {
		return domain.Tag{}, notFound("tag", t.ID)
	}
	if nameTaken(m.tags, t.ID, tagKey, t.Name) {
		return domain.Tag{}, fmt.Errorf("tag %q: %w", t.Name, ErrDuplicate)
	}
	m.tags[i] = t
	return t, nil
}

// DeleteTag also detaches the tag from every test case.
func (m *Memory) DeleteTag(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.tags, func(r domain.Tag) bool { return r.ID == id })
	if i < 0 {
		return notFound("tag", id)
	}
	m.tags = remove(m.tags, i)
	for j := range m.testCases {
		ids := m.testCases[j].in.TagIDs[:0]
		for _, tagID := range m.testCases[j].in.TagIDs {
			if tagID != id {
				ids = append(ids, tagID)
			}
		}
		m.testCases[j].in.TagIDs = ids
	}
	return nil
}

// --- test cases ---

// checkRefs verifies every identifier in in points at an existing row.
func (m *Memory) checkRefs(in domain.TestCaseInput) error {
	if indexOf(m.modules, func(r domain.Module) bool { return r.ID == in.ModuleID }) < 0 {
		return notFound("module", in.ModuleID)
	}
	if in.SubModuleID != nil {
		i := indexOf(m.subModules, func(r domain.SubModule) bool { return r.ID == *in.SubModuleID })
		if i < 0 {
			return notFound("sub-module", *in.SubModuleID)
		}
	}
	if indexOf(m.priorities, func(r domain.Priority) bool { return r.ID == in.PriorityID }) < 0 {
		return notFound("priority", in.PriorityID)
	}
	if indexOf(m.statuses, func(r domain.AutomationStatus) bool { return r.ID == in.AutomationStatusID }) < 0 {
		return notFound("automation status", in.AutomationStatusID)
	}
	if in.AutomatedByID != nil {
		if indexOf(m.users, func(r domain.User) bool { return r.ID == *in.AutomatedByID }) < 0 {
			return notFound("user", *in.AutomatedByID)
		}
	}
	for _, tagID := range in.TagIDs {
		if indexOf(m.tags, func(r domain.Tag) bool { return r.ID == tagID }) < 0 {
			return notFound("tag", tagID)
		}
	}
	return nil
}

func (m *Memory) testcaseIDTaken(self int64, testcaseID string) bool {
	return indexOf(m.testCases, func(r testCaseRow) bool {
		return r.id != self && domain.SameName(r.in.TestcaseID, testcaseID)
	}) >= 0
}

// normalizeInput copies slices and pointers so callers cannot alias
// stored state, and collapses repeated tag ids.
func normalizeInput(in domain.TestCaseInput) domain.TestCaseInput {
	if in.SubModuleID != nil {
		in.SubModuleID = domain.Int64Ptr(*in.SubModuleID)
	}
	if in.AutomatedByID != nil {
		in.AutomatedByID = domain.Int64Ptr(*in.AutomatedByID)
	}
	tags := make([]int64, 0, len(in.TagIDs))
	seen := make(map[int64]struct{}, len(in.TagIDs))
	for _, id := range in.TagIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		tags = append(tags, id)
	}
	in.TagIDs = tags
	return in
}

func (m *Memory) testCaseView(row testCaseRow) domain.TestCase {
	tc := domain.TestCase{ID: row.id, TestCaseInput: normalizeInput(row.in)}

	if i := indexOf(m.modules, func(r domain.Module) bool { return r.ID == tc.ModuleID }); i >= 0 {
		tc.ModuleName = m.modules[i].Name
	}
	if tc.SubModuleID != nil {
		if i := indexOf(m.subModules, func(r domain.SubModule) bool { return r.ID == *tc.SubModuleID }); i >= 0 {
			tc.SubModuleName = m.subModules[i].Name
		}
	}
	if i := indexOf(m.priorities, func(r domain.Priority) bool { return r.ID == tc.PriorityID }); i >= 0 {
		tc.PriorityName = m.priorities[i].Name
	}
	if i := indexOf(m.statuses, func(r domain.AutomationStatus) bool { return r.ID == tc.AutomationStatusID }); i >= 0 {
		tc.AutomationStatusName = m.statuses[i].Name
	}
	if tc.AutomatedByID != nil {
		if i := indexOf(m.users, func(r domain.User) bool { return r.ID == *tc.AutomatedByID }); i >= 0 {
			tc.AutomatedByName = m.users[i].Name
		}
	}
	for _, tagID := range tc.TagIDs {
		if i := indexOf(m.tags, func(r domain.Tag) bool { return r.ID == tagID }); i >= 0 {
			tc.TagNames = append(tc.TagNames, m.tags[i].Name)
		}
	}
	return tc
}

func (m *Memory) ListTestCases(context.Context) ([]domain.TestCase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.TestCase, 0, len(m.testCases))
	for _, row := range m.testCases {
		out = append(out, m.testCaseView(row))
	}
	return out, nil
}

func (m *Memory) ListTestCasesByModule(_ context.Context, moduleID int64) ([]domain.TestCase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.TestCase, 0)
	for _, row := range m.testCases {
		if row.in.ModuleID == moduleID {
			out = append(out, m.testCaseView(row))
		}
	}
	return out, nil
}

func (m *Memory) GetTestCase(_ context.Context, id int64) (domain.TestCase, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := indexOf(m.testCases, func(r testCaseRow) bool { return r.id == id })
	if i < 0 {
		return domain.TestCase{}, notFound("test case", id)
	}
	return m.testCaseView(m.testCases[i]), nil
}

func (m *Memory) CreateTestCase(_ context.Context, in domain.TestCaseInput) (domain.TestCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.testcaseIDTaken(0, in.TestcaseID) {
		return domain.TestCase{}, fmt.Errorf("test case %q: %w", in.TestcaseID, ErrDuplicate)
	}
	if err := m.checkRefs(in); err != nil {
		return domain.TestCase{}, err
	}
	row := testCaseRow{id: m.id(), in: normalizeInput(in)}
	m.testCases = append(m.testCases, row)
	return m.testCaseView(row), nil
}

func (m *Memory) UpdateTestCase(_ context.Context, id int64, in domain.TestCaseInput) (domain.TestCase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.testCases, func(r testCaseRow) bool { return r.id == id })
	if i < 0 {
		return domain.TestCase{}, notFound("test case", id)
	}
	if m.testcaseIDTaken(id, in.TestcaseID) {
		return domain.TestCase{}, fmt.Errorf("test case %q: %w", in.TestcaseID, ErrDuplicate)
	}
	if err := m.checkRefs(in); err != nil {
		return domain.TestCase{}, err
	}
	m.testCases[i].in = normalizeInput(in)
	return m.testCaseView(m.testCases[i]), nil
}

func (m *Memory) DeleteTestCase(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := indexOf(m.testCases, func(r testCaseRow) bool { return r.id == id })
	if i < 0 {
		return notFound("test case", id)
	}
	m.testCases = remove(m.testCases, i)
	return nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() {}
