package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/JonMunkholm/tcm/internal/domain"
)

func (s *Service) ListTestCases(ctx context.Context) ([]domain.TestCase, error) {
	return s.store.ListTestCases(ctx)
}

func (s *Service) ListTestCasesByModule(ctx context.Context, moduleID int64) ([]domain.TestCase, error) {
	return s.store.ListTestCasesByModule(ctx, moduleID)
}

func (s *Service) GetTestCase(ctx context.Context, id int64) (domain.TestCase, error) {
	tc, err := s.store.GetTestCase(ctx, id)
	return tc, storeError(err, testCaseEntity, id, "")
}

// CreateTestCase validates in and stores a new test case. The testcaseId
// must not be used by another test case, ignoring case.
func (s *Service) CreateTestCase(ctx context.Context, in domain.TestCaseInput) (domain.TestCase, error) {
	if err := s.checkTestCase(ctx, &in); err != nil {
		return domain.TestCase{}, err
	}
	tc, err := s.store.CreateTestCase(ctx, in)
	return tc, storeError(err, testCaseEntity, 0, in.TestcaseID)
}

// UpdateTestCase replaces every field of test case id, including its tags.
// A test case may keep its own testcaseId.
func (s *Service) UpdateTestCase(ctx context.Context, id int64, in domain.TestCaseInput) (domain.TestCase, error) {
	if _, err := s.GetTestCase(ctx, id); err != nil {
		return domain.TestCase{}, err
	}
	if err := s.checkTestCase(ctx, &in); err != nil {
		return domain.TestCase{}, err
	}
	tc, err := s.store.UpdateTestCase(ctx, id, in)
	return tc, storeError(err, testCaseEntity, id, in.TestcaseID)
}

func (s *Service) DeleteTestCase(ctx context.Context, id int64) error {
	return storeError(s.store.DeleteTestCase(ctx, id), testCaseEntity, id, "")
}

// checkTestCase trims the text fields, checks the required ones and
// verifies every reference, in that order.
func (s *Service) checkTestCase(ctx context.Context, in *domain.TestCaseInput) error {
	in.TestcaseID = strings.TrimSpace(in.TestcaseID)
	in.TestCaseDescription = strings.TrimSpace(in.TestCaseDescription)
	in.TestScript = strings.TrimSpace(in.TestScript)
	in.ExpectedResult = strings.TrimSpace(in.ExpectedResult)
	in.PreConditions = strings.TrimSpace(in.PreConditions)
	in.AutomationComments = strings.TrimSpace(in.AutomationComments)
	in.ClubbedTCID = strings.TrimSpace(in.ClubbedTCID)

	switch {
	case in.TestcaseID == "":
		return invalid("Test case ID is required")
	case in.ModuleID == 0:
		return invalid("Module ID is required")
	case in.TestCaseDescription == "":
		return invalid("Test case description is required")
	case in.TestScript == "":
		return invalid("Test script is required")
	case in.ExpectedResult == "":
		return invalid("Expected result is required")
	case in.PriorityID == 0:
		return invalid("Priority ID is required")
	case in.AutomationStatusID == 0:
		return invalid("Automation status ID is required")
	}

	return s.checkReferences(ctx, in)
}

func (s *Service) checkReferences(ctx context.Context, in *domain.TestCaseInput) error {
	if _, err := s.store.GetModule(ctx, in.ModuleID); err != nil {
		return refError(err, "Module", in.ModuleID)
	}
	if in.SubModuleID != nil {
		sm, err := s.store.GetSubModule(ctx, *in.SubModuleID)
		if err != nil {
			return refError(err, "SubModule", *in.SubModuleID)
		}
		if sm.ModuleID != in.ModuleID {
			return invalid(fmt.Sprintf("SubModule with id: %d does not belong to Module with id: %d", sm.ID, in.ModuleID))
		}
	}
	if _, err := s.store.GetPriority(ctx, in.PriorityID); err != nil {
		return refError(err, "Priority", in.PriorityID)
	}
	if _, err := s.store.GetAutomationStatus(ctx, in.AutomationStatusID); err != nil {
		return refError(err, "AutomationStatus", in.AutomationStatusID)
	}
	if in.AutomatedByID != nil {
		if _, err := s.store.GetUser(ctx, *in.AutomatedByID); err != nil {
			return refError(err, "AutomatedBy", *in.AutomatedByID)
		}
	}
	for _, tagID := range in.TagIDs {
		if _, err := s.store.GetTag(ctx, tagID); err != nil {
			return refError(err, "Tag", tagID)
		}
	}
	return nil
}

// refError reports a missing reference by its label, passing through
// anything that is not a not-found.
func refError(err error, label string, id int64) error {
	return storeError(err, entity{label: label}, id, "")
}
