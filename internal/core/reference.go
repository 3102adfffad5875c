package core

import (
	"context"
	"strings"

	"github.com/JonMunkholm/tcm/internal/domain"
	"github.com/JonMunkholm/tcm/internal/importer"
)

// Reference data CRUD. Names are trimmed and must be non-empty; the store
// enforces case-insensitive uniqueness and storeError turns violations
// into the messages clients display.

// --- modules ---

func (s *Service) ListModules(ctx context.Context) ([]domain.Module, error) {
	return s.store.ListModules(ctx)
}

func (s *Service) GetModule(ctx context.Context, id int64) (domain.Module, error) {
	m, err := s.store.GetModule(ctx, id)
	return m, storeError(err, moduleEntity, id, "")
}

func (s *Service) CreateModule(ctx context.Context, m domain.Module) (domain.Module, error) {
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return domain.Module{}, invalid("Module name is required")
	}
	out, err := s.store.CreateModule(ctx, m)
	return out, storeError(err, moduleEntity, 0, m.Name)
}

func (s *Service) UpdateModule(ctx context.Context, id int64, m domain.Module) (domain.Module, error) {
	m.ID = id
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return domain.Module{}, invalid("Module name is required")
	}
	out, err := s.store.UpdateModule(ctx, m)
	return out, storeError(err, moduleEntity, id, m.Name)
}

func (s *Service) DeleteModule(ctx context.Context, id int64) error {
	return storeError(s.store.DeleteModule(ctx, id), moduleEntity, id, "")
}

// --- sub-modules ---

func (s *Service) ListSubModules(ctx context.Context) ([]domain.SubModule, error) {
	return s.store.ListSubModules(ctx)
}

func (s *Service) ListSubModulesByModule(ctx context.Context, moduleID int64) ([]domain.SubModule, error) {
	return s.store.ListSubModulesByModule(ctx, moduleID)
}

func (s *Service) GetSubModule(ctx context.Context, id int64) (domain.SubModule, error) {
	sm, err := s.store.GetSubModule(ctx, id)
	return sm, storeError(err, subModuleEntity, id, "")
}

func (s *Service) CreateSubModule(ctx context.Context, sm domain.SubModule) (domain.SubModule, error) {
	if err := s.checkSubModule(ctx, &sm); err != nil {
		return domain.SubModule{}, err
	}
	out, err := s.store.CreateSubModule(ctx, sm)
	return out, storeError(err, subModuleEntity, 0, sm.Name)
}

func (s *Service) UpdateSubModule(ctx context.Context, id int64, sm domain.SubModule) (domain.SubModule, error) {
	if _, err := s.GetSubModule(ctx, id); err != nil {
		return domain.SubModule{}, err
	}
	sm.ID = id
	if err := s.checkSubModule(ctx, &sm); err != nil {
		return domain.SubModule{}, err
	}
	out, err := s.store.UpdateSubModule(ctx, sm)
	return out, storeError(err, subModuleEntity, id, sm.Name)
}

func (s *Service) DeleteSubModule(ctx context.Context, id int64) error {
	return storeError(s.store.DeleteSubModule(ctx, id), subModuleEntity, id, "")
}

// checkSubModule validates the name and that the parent module exists.
func (s *Service) checkSubModule(ctx context.Context, sm *domain.SubModule) error {
	sm.Name = strings.TrimSpace(sm.Name)
	if sm.Name == "" {
		return invalid("Sub-module name is required")
	}
	if sm.ModuleID == 0 {
		return invalid("Module ID is required")
	}
	if _, err := s.GetModule(ctx, sm.ModuleID); err != nil {
		return err
	}
	return nil
}

// --- priorities ---

func (s *Service) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	return s.store.ListPriorities(ctx)
}

func (s *Service) GetPriority(ctx context.Context, id int64) (domain.Priority, error) {
	p, err := s.store.GetPriority(ctx, id)
	return p, storeError(err, priorityEntity, id, "")
}

func (s *Service) CreatePriority(ctx context.Context, p domain.Priority) (domain.Priority, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Priority{}, invalid("Priority name is required")
	}
	out, err := s.store.CreatePriority(ctx, p)
	return out, storeError(err, priorityEntity, 0, p.Name)
}

func (s *Service) UpdatePriority(ctx context.Context, id int64, p domain.Priority) (domain.Priority, error) {
	p.ID = id
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Priority{}, invalid("Priority name is required")
	}
	out, err := s.store.UpdatePriority(ctx, p)
	return out, storeError(err, priorityEntity, id, p.Name)
}

func (s *Service) DeletePriority(ctx context.Context, id int64) error {
	return storeError(s.store.DeletePriority(ctx, id), priorityEntity, id, "")
}

// --- automation statuses ---

func (s *Service) ListAutomationStatuses(ctx context.Context) ([]domain.AutomationStatus, error) {
	return s.store.ListAutomationStatuses(ctx)
}

func (s *Service) GetAutomationStatus(ctx context.Context, id int64) (domain.AutomationStatus, error) {
	st, err := s.store.GetAutomationStatus(ctx, id)
	return st, storeError(err, statusEntity, id, "")
}

func (s *Service) CreateAutomationStatus(ctx context.Context, st domain.AutomationStatus) (domain.AutomationStatus, error) {
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return domain.AutomationStatus{}, invalid("Status name is required")
	}
	out, err := s.store.CreateAutomationStatus(ctx, st)
	return out, storeError(err, statusEntity, 0, st.Name)
}

func (s *Service) UpdateAutomationStatus(ctx context.Context, id int64, st domain.AutomationStatus) (domain.AutomationStatus, error) {
	st.ID = id
	st.Name = strings.TrimSpace(st.Name)
	if st.Name == "" {
		return domain.AutomationStatus{}, invalid("Status name is required")
	}
	out, err := s.store.UpdateAutomationStatus(ctx, st)
	return out, storeError(err, statusEntity, id, st.Name)
}

func (s *Service) DeleteAutomationStatus(ctx context.Context, id int64) error {
	return storeError(s.store.DeleteAutomationStatus(ctx, id), statusEntity, id, "")
}

// --- users ---

func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.store.ListUsers(ctx)
}

func (s *Service) GetUser(ctx context.Context, id int64) (domain.User, error) {
	u, err := s.store.GetUser(ctx, id)
	return u, storeError(err, userEntity, id, "")
}

func (s *Service) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		return domain.User{}, invalid("Name is required")
	}
	out, err := s.store.CreateUser(ctx, u)
	return out, storeError(err, userEntity, 0, u.Name)
}

func (s *Service) UpdateUser(ctx context.Context, id int64, u domain.User) (domain.User, error) {
	u.ID = id
	u.Name = strings.TrimSpace(u.Name)
	if u.Name == "" {
		return domain.User{}, invalid("Name is required")
	}
	out, err := s.store.UpdateUser(ctx, u)
	return out, storeError(err, userEntity, id, u.Name)
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	return storeError(s.store.DeleteUser(ctx, id), userEntity, id, "")
}

// --- tags ---

func (s *Service) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.store.ListTags(ctx)
}

func (s *Service) GetTag(ctx context.Context, id int64) (domain.Tag, error) {
	t, err := s.store.GetTag(ctx, id)
	return t, storeError(err, tagEntity, id, "")
}

func (s *Service) CreateTag(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return domain.Tag{}, invalid("Tag name is required")
	}
	if t.Color == "" {
		t.Color = importer.DefaultTagColor
	}
	out, err := s.store.CreateTag(ctx, t)
	return out, storeError(err, tagEntity, 0, t.Name)
}

func (s *Service) UpdateTag(ctx context.Context, id int64, t domain.Tag) (domain.Tag, error) {
	t.ID = id
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return domain.Tag{}, invalid("Tag name is required")
	}
	if t.Color == "" {
		t.Color = importer.DefaultTagColor
	}
	out, err := s.store.UpdateTag(ctx, t)
	return out, storeError(err, tagEntity, id, t.Name)
}

func (s *Service) DeleteTag(ctx context.Context, id int64) error {
	return storeError(s.store.DeleteTag(ctx, id), tagEntity, id, "")
}
