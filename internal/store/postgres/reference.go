package postgres

import (
	"context"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// Columns are selected in struct field order so rows scan positionally.

const (
	selectModules    = `SELECT id, name, description FROM modules`
	selectSubModules = `SELECT sm.id, sm.name, sm.description, sm.module_id, m.name
		FROM sub_modules sm JOIN modules m ON m.id = sm.module_id`
	selectPriorities = `SELECT id, name, description, level FROM priorities`
	selectStatuses   = `SELECT id, name, description FROM automation_statuses`
	selectUsers      = `SELECT id, name, email, team FROM users`
	selectTags       = `SELECT id, name, description, color FROM tags`
)

// --- modules ---

func (s *Store) ListModules(ctx context.Context) ([]domain.Module, error) {
	out, err := queryAll[domain.Module](ctx, s.pool, selectModules+` ORDER BY id`)
	return out, mapError(err, opRead, "list modules")
}

func (s *Store) GetModule(ctx context.Context, id int64) (domain.Module, error) {
	out, err := queryOne[domain.Module](ctx, s.pool, selectModules+` WHERE id = $1`, id)
	return out, mapError(err, opRead, "get module")
}

func (s *Store) CreateModule(ctx context.Context, m domain.Module) (domain.Module, error) {
	out, err := queryOne[domain.Module](ctx, s.pool,
		`INSERT INTO modules (name, description) VALUES ($1, $2)
		RETURNING id, name, description`,
		m.Name, m.Description)
	return out, mapError(err, opWrite, "create module")
}

func (s *Store) UpdateModule(ctx context.Context, m domain.Module) (domain.Module, error) {
	out, err := queryOne[domain.Module](ctx, s.pool,
		`UPDATE modules SET name = $2, description = $3 WHERE id = $1
		RETURNING id, name, description`,
		m.ID, m.Name, m.Description)
	return out, mapError(err, opWrite, "update module")
}

func (s *Store) DeleteModule(ctx context.Context, id int64) error {
	return mapError(execOne(ctx, s.pool, `DELETE FROM modules WHERE id = $1`, id), opDelete, "delete module")
}

// --- sub-modules ---

func (s *Store) ListSubModules(ctx context.Context) ([]domain.SubModule, error) {
	out, err := queryAll[domain.SubModule](ctx, s.pool, selectSubModules+` ORDER BY sm.id`)
	return out, mapError(err, opRead, "list sub-modules")
}

func (s *Store) ListSubModulesByModule(ctx context.Context, moduleID int64) ([]domain.SubModule, error) {
	out, err := queryAll[domain.SubModule](ctx, s.pool,
		selectSubModules+` WHERE sm.module_id = $1 ORDER BY sm.id`, moduleID)
	return out, mapError(err, opRead, "list sub-modules by module")
}

func (s *Store) GetSubModule(ctx context.Context, id int64) (domain.SubModule, error) {
	out, err := queryOne[domain.SubModule](ctx, s.pool, selectSubModules+` WHERE sm.id = $1`, id)
	return out, mapError(err, opRead, "get sub-module")
}

func (s *Store) CreateSubModule(ctx context.Context, sm domain.SubModule) (domain.SubModule, error) {
	out, err := queryOne[domain.SubModule](ctx, s.pool,
		`WITH ins AS (
			INSERT INTO sub_modules (name, description, module_id) VALUES ($1, $2, $3)
			RETURNING id, name, description, module_id
		)
		SELECT ins.id, ins.name, ins.description, ins.module_id, m.name
		FROM ins JOIN modules m ON m.id = ins.module_id`,
		sm.Name, sm.Description, sm.ModuleID)
	return out, mapError(err, opWrite, "create sub-module")
}

func (s *Store) UpdateSubModule(ctx context.Context, sm domain.SubModule) (domain.SubModule, error) {
	out, err := queryOne[domain.SubModule](ctx, s.pool,
		`WITH upd AS (
			UPDATE sub_modules SET name = $2, description = $3, module_id = $4 WHERE id = $1
			RETURNING id, name, description, module_id
		)
		SELECT upd.id, upd.name, upd.description, upd.module_id, m.name
		FROM upd JOIN modules m ON m.id = upd.module_id`,
		sm.ID, sm.Name, sm.Description, sm.ModuleID)
	return out, mapError(err, opWrite, "update sub-module")
}

func (s *Store) DeleteSubModule(ctx context.Context, id int64) error {
	return mapError(execOne(ctx, s.pool, `DELETE FROM sub_modules WHERE id = $1`, id), opDelete, "delete sub-module")
}

// --- priorities ---

func (s *Store) ListPriorities(ctx context.Context) ([]domain.Priority, error) {
	out, err := queryAll[domain.Priority](ctx, s.pool, selectPriorities+` ORDER BY id`)
	return out, mapError(err, opRead, "list priorities")
}

func (s *Store) GetPriority(ctx context.Context, id int64) (domain.Priority, error) {
	out, err := queryOne[domain.Priority](ctx, s.pool, selectPriorities+` WHERE id = $1`, id)
	return out, mapError(err, opRead, "get priority")
}

func (s *Store) CreatePriority(ctx context.Context, p domain.Priority) (domain.Priority, error) {
	out, err := queryOne[domain.Priority](ctx, s.pool,
		`INSERT INTO priorities (name, description, level) VALUES ($1, $2, $3)
		RETURNING id, name, description, level`,
		p.Name, p.Description, p.Level)
	return out, mapError(err, opWrite, "create priority")
}

func (s *Store) UpdatePriority(ctx context.Context, p domain.Priority) (domain.Priority, error) {
	out, err := queryOne[domain.Priority](ctx, s.pool,
		`UPDATE priorities SET name = $2, description = $3, level = $4 WHERE id = $1
		RETURNING id, name, description, level`,
		p.ID, p.Name, p.Description, p.Level)
	return out, mapError(err, opWrite, "update priority")
}

func (s *Store) DeletePriority(ctx context.Context, id int64) error {
	return mapError(execOne(ctx, s.pool, `DELETE FROM priorities WHERE id = $1`, id), opDelete, "delete priority")
}

// --- automation statuses ---

func (s *Store) ListAutomationStatuses(ctx context.Context) ([]domain.AutomationStatus, error) {
	out, err := queryAll[domain.AutomationStatus](ctx, s.pool, selectStatuses+` ORDER BY id`)
	return out, mapError(err, opRead, "list automation statuses")
}

func (s *Store) GetAutomationStatus(ctx context.Context, id int64) (domain.AutomationStatus, error) {
	out, err := queryOne[domain.AutomationStatus](ctx, s.pool, selectStatuses+` WHERE id = $1`, id)
	return out, mapError(err, opRead, "get automation status")
}

func (s *Store) CreateAutomationStatus(ctx context.Context, st domain.AutomationStatus) (domain.AutomationStatus, error) {
	out, err := queryOne[domain.AutomationStatus](ctx, s.pool,
		`INSERT INTO automation_statuses (name, description) VALUES ($1, $2)
		RETURNING id, name, description`,
		st.Name, st.Description)
	return out, mapError(err, opWrite, "create automation status")
}

func (s *Store) UpdateAutomationStatus(ctx context.Context, st domain.AutomationStatus) (domain.AutomationStatus, error) {
	out, err := queryOne[domain.AutomationStatus](ctx, s.pool,
		`UPDATE automation_statuses SET name = $2, description = $3 WHERE id = $1
		RETURNING id, name, description`,
		st.ID, st.Name, st.Description)
	return out, mapError(err, opWrite, "update automation status")
}

func (s *Store) DeleteAutomationStatus(ctx context.Context, id int64) error {
	return mapError(execOne(ctx, s.pool, `DELETE FROM automation_statuses WHERE id = $1`, id), opDelete, "delete automation status")
}

// --- users ---

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	out, err := queryAll[domain.User](ctx, s.pool, selectUsers+` ORDER BY id`)
	return out, mapError(err, opRead, "list users")
}

func (s *Store) GetUser(ctx context.Context, id int64) (domain.User, error) {
	out, err := queryOne[domain.User](ctx, s.pool, selectUsers+` WHERE id = $1`, id)
	return out, mapError(err, opRead, "get user")
}

func (s *Store) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	out, err := queryOne[domain.User](ctx, s.pool,
		`INSERT INTO users (name, email, team) VALUES ($1, $2, $3)
		RETURNING id, name, email, team`,
		u.Name, u.Email, u.Team)
	return out, mapError(err, opWrite, "create user")
}

func (s *Store) UpdateUser(ctx context.Context, u domain.User) (domain.User, error) {
	out, err := queryOne[domain.User](ctx, s.pool,
		`UPDATE users SET name = $2, email = $3, team = $4 WHERE id = $1
		RETURNING id, name, email, team`,
		u.ID, u.Name, u.Email, u.Team)
	return out, mapError(err, opWrite, "update user")
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	return mapError(execOne(ctx, s.pool, `DELETE FROM users WHERE id = $1`, id), opDelete, "delete user")
}

// --- tags ---

func (s *Store) ListTags(ctx context.Context) ([]domain.Tag, error) {
	out, err := queryAll[domain.Tag](ctx, s.pool, selectTags+` ORDER BY id`)
	return out, mapError(err, opRead, "list tags")
}

func (s *Store) GetTag(ctx context.Context, id int64) (domain.Tag, error) {
	out, err := queryOne[domain.Tag](ctx, s.pool, selectTags+` WHERE id = $1`, id)
	return out, mapError(err, opRead, "get tag")
}

func (s *Store) CreateTag(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	out, err := queryOne[domain.Tag](ctx, s.pool,
		`INSERT INTO tags (name, description, color) VALUES ($1, $2, $3)
		RETURNING id, name, description, color`,
		t.Name, t.Description, t.Color)
	return out, mapError(err, opWrite, "create tag")
}

func (s *Store) UpdateTag(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	out, err := queryOne[domain.Tag](ctx, s.pool,
		`UPDATE tags SET name = $2, description = $3, color = $4 WHERE id = $1
		RETURNING id, name, description, color`,
		t.ID, t.Name, t.Description, t.Color)
	return out, mapError(err, opWrite, "update tag")
}

func (s *Store) DeleteTag(ctx context.Context, id int64) error {
	return mapError(execOne(ctx, s.pool, `DELETE FROM tags WHERE id = $1`, id), opDelete, "delete tag")
}
