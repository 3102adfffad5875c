package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/tcm/internal/domain"
)

const (
	// DefaultStatusName is used when the Automation Status cell is empty.
	DefaultStatusName = "Yet to Start"

	// DefaultTagColor is assigned to tags created during import.
	DefaultTagColor = "#6366f1"

	autoCreatedDescription   = "Auto-created during import"
	defaultStatusDescription = "Default status for test cases without automation status"
)

var (
	ErrModuleRequired = errors.New("Module is required. Could not create module.")
	ErrNoPriority     = errors.New("No priority available. Please create at least one priority first.")
	ErrNoStatus       = errors.New("No automation status available. Please create at least one status first.")
)

// CreatedCounts tallies reference entities created during a run.
type CreatedCounts struct {
	Modules    int `json:"modules"`
	SubModules int `json:"subModules"`
	Priorities int `json:"priorities"`
	Statuses   int `json:"automationStatuses"`
	Users      int `json:"users"`
	Tags       int `json:"tags"`
}

// Total is the sum over every dimension.
func (c CreatedCounts) Total() int {
	return c.Modules + c.SubModules + c.Priorities + c.Statuses + c.Users + c.Tags
}

// Resolved holds the reference entities a Record maps onto.
type Resolved struct {
	Module      domain.Module
	SubModule   *domain.SubModule
	Priority    domain.Priority
	Status      domain.AutomationStatus
	AutomatedBy *domain.User
	Tags        []domain.Tag
}

// Input builds the persistence payload for rec from the resolved references.
func (r Resolved) Input(rec Record) domain.TestCaseInput {
	in := domain.TestCaseInput{
		TestcaseID:          rec.TestcaseID,
		ModuleID:            r.Module.ID,
		TestCaseDescription: rec.Description,
		PreConditions:       rec.PreConditions,
		TestScript:          rec.TestScript,
		ExpectedResult:      rec.ExpectedResult,
		PriorityID:          r.Priority.ID,
		AutomationStatusID:  r.Status.ID,
		AutomationComments:  rec.AutomationComments,
		ClubbedTCID:         rec.ClubbedTCID,
		TagIDs:              make([]int64, 0, len(r.Tags)),
	}
	if r.SubModule != nil {
		in.SubModuleID = domain.Int64Ptr(r.SubModule.ID)
	}
	if r.AutomatedBy != nil {
		in.AutomatedByID = domain.Int64Ptr(r.AutomatedBy.ID)
	}
	for _, t := range r.Tags {
		in.TagIDs = append(in.TagIDs, t.ID)
	}
	return in
}

// Resolver maps reference names to entities, creating the missing ones
// through the gateway and recording them in the catalogs.
type Resolver struct {
	gw      Gateway
	cat     *Catalogs
	created *CreatedCounts
	logger  *slog.Logger
}

// NewResolver returns a Resolver that reads and extends cat. Creations are
// tallied into created when it is non-nil.
func NewResolver(gw Gateway, cat *Catalogs, created *CreatedCounts, logger *slog.Logger) *Resolver {
	if created == nil {
		created = &CreatedCounts{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{gw: gw, cat: cat, created: created, logger: logger}
}

// findOrCreate returns the first catalog entry satisfying match. With no
// match it calls create and appends the result to the catalog. The bool
// reports whether a new entity was created.
func findOrCreate[T any](
	ctx context.Context,
	catalog *[]T,
	match func(T) bool,
	create func(context.Context) (T, error),
) (T, bool, error) {
	for _, item := range *catalog {
		if match(item) {
			return item, false, nil
		}
	}
	item, err := create(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	*catalog = append(*catalog, item)
	return item, true, nil
}

// Resolve maps every reference of rec. Module, priority and status are
// required; sub-module, user and tag failures are logged and skipped.
func (r *Resolver) Resolve(ctx context.Context, rec Record) (Resolved, error) {
	var out Resolved

	module, err := r.module(ctx, rec.ModuleName)
	if err != nil {
		return Resolved{}, err
	}
	out.Module = module

	if rec.SubModuleName != "" {
		out.SubModule = r.subModule(ctx, rec.SubModuleName, module)
	}

	if out.Priority, err = r.priority(ctx, rec.PriorityName); err != nil {
		return Resolved{}, err
	}
	if out.Status, err = r.status(ctx, rec.StatusName); err != nil {
		return Resolved{}, err
	}

	if rec.AutomatedByName != "" {
		out.AutomatedBy = r.user(ctx, rec.AutomatedByName)
	}

	out.Tags = r.tags(ctx, rec.TagNames())
	return out, nil
}

func (r *Resolver) module(ctx context.Context, name string) (domain.Module, error) {
	if name == "" {
		return domain.Module{}, ErrModuleRequired
	}
	m, created, err := findOrCreate(ctx, &r.cat.Modules,
		func(m domain.Module) bool { return domain.SameName(m.Name, name) },
		func(ctx context.Context) (domain.Module, error) {
			return r.gw.CreateModule(ctx, domain.Module{Name: name, Description: autoCreatedDescription})
		},
	)
	if err != nil {
		return domain.Module{}, fmt.Errorf("Failed to create module \"%s\": %s", name, messageOf(err, "Failed to create module"))
	}
	if created {
		r.created.Modules++
		r.logger.Debug("created module", "name", name, "id", m.ID)
	}
	return m, nil
}

func (r *Resolver) subModule(ctx context.Context, name string, module domain.Module) *domain.SubModule {
	sm, created, err := findOrCreate(ctx, &r.cat.SubModules,
		func(sm domain.SubModule) bool {
			return sm.ModuleID == module.ID && domain.SameName(sm.Name, name)
		},
		func(ctx context.Context) (domain.SubModule, error) {
			return r.gw.CreateSubModule(ctx, domain.SubModule{
				Name:        name,
				Description: autoCreatedDescription,
				ModuleID:    module.ID,
			})
		},
	)
	if err != nil {
		r.logger.Warn("sub-module not created", "name", name, "module", module.Name, "error", err)
		return nil
	}
	if created {
		r.created.SubModules++
		r.logger.Debug("created sub-module", "name", name, "module", module.Name, "id", sm.ID)
	}
	return &sm
}

// priority resolves name, falling back to the first catalog entry when the
// cell is empty or the create is rejected.
func (r *Resolver) priority(ctx context.Context, name string) (domain.Priority, error) {
	if name != "" {
		p, created, err := findOrCreate(ctx, &r.cat.Priorities,
			func(p domain.Priority) bool { return domain.SameName(p.Name, name) },
			func(ctx context.Context) (domain.Priority, error) {
				return r.gw.CreatePriority(ctx, domain.Priority{Name: name, Description: autoCreatedDescription})
			},
		)
		if err == nil {
			if created {
				r.created.Priorities++
				r.logger.Debug("created priority", "name", name, "id", p.ID)
			}
			return p, nil
		}
		r.logger.Warn("priority not created", "name", name, "error", err)
	}
	if len(r.cat.Priorities) > 0 {
		return r.cat.Priorities[0], nil
	}
	return domain.Priority{}, ErrNoPriority
}

func (r *Resolver) status(ctx context.Context, name string) (domain.AutomationStatus, error) {
	if name == "" {
		name = DefaultStatusName
	}
	desc := autoCreatedDescription
	if name == DefaultStatusName {
		desc = defaultStatusDescription
	}

	s, created, err := findOrCreate(ctx, &r.cat.Statuses,
		func(s domain.AutomationStatus) bool { return domain.SameName(s.Name, name) },
		func(ctx context.Context) (domain.AutomationStatus, error) {
			return r.gw.CreateAutomationStatus(ctx, domain.AutomationStatus{Name: name, Description: desc})
		},
	)
	if err == nil {
		if created {
			r.created.Statuses++
			r.logger.Debug("created automation status", "name", name, "id", s.ID)
		}
		return s, nil
	}

	r.logger.Warn("automation status not created", "name", name, "error", err)
	if len(r.cat.Statuses) > 0 {
		return r.cat.Statuses[0], nil
	}
	return domain.AutomationStatus{}, ErrNoStatus
}

func (r *Resolver) user(ctx context.Context, name string) *domain.User {
	u, created, err := findOrCreate(ctx, &r.cat.Users,
		func(u domain.User) bool { return domain.SameName(u.Name, name) },
		func(ctx context.Context) (domain.User, error) {
			return r.gw.CreateUser(ctx, domain.User{Name: name})
		},
	)
	if err != nil {
		r.logger.Warn("user not created", "name", name, "error", err)
		return nil
	}
	if created {
		r.created.Users++
		r.logger.Debug("created user", "name", name, "id", u.ID)
	}
	return &u
}

// tags resolves each name in order. A tag referenced twice appears once.
func (r *Resolver) tags(ctx context.Context, names []string) []domain.Tag {
	var out []domain.Tag
	seen := make(map[int64]struct{}, len(names))

	for _, name := range names {
		t, created, err := findOrCreate(ctx, &r.cat.Tags,
			func(t domain.Tag) bool { return domain.SameName(t.Name, name) },
			func(ctx context.Context) (domain.Tag, error) {
				return r.gw.CreateTag(ctx, domain.Tag{
					Name:        name,
					Description: autoCreatedDescription,
					Color:       DefaultTagColor,
				})
			},
		)
		if err != nil {
			r.logger.Warn("tag not created", "name", name, "error", err)
			continue
		}
		if created {
			r.created.Tags++
			r.logger.Debug("created tag", "name", name, "id", t.ID)
		}
		if _, dup := seen[t.ID]; dup {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}
