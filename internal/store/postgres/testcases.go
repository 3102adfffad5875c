package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/tcm/internal/domain"
)

const selectTestCases = `
SELECT
	tc.id, tc.testcase_id, tc.module_id, m.name,
	tc.sub_module_id, COALESCE(sm.name, ''),
	tc.test_case_description, COALESCE(tc.pre_conditions, ''),
	tc.test_script, tc.expected_result,
	tc.priority_id, p.name,
	tc.automation_status_id, st.name,
	tc.automated_by_id, COALESCE(u.name, ''),
	COALESCE(tc.automation_comments, ''), COALESCE(tc.clubbed_tc_id, ''),
	COALESCE(array_agg(t.id ORDER BY tt.position) FILTER (WHERE t.id IS NOT NULL), '{}'),
	COALESCE(array_agg(t.name ORDER BY tt.position) FILTER (WHERE t.id IS NOT NULL), '{}')
FROM test_cases tc
JOIN modules m ON m.id = tc.module_id
LEFT JOIN sub_modules sm ON sm.id = tc.sub_module_id
JOIN priorities p ON p.id = tc.priority_id
JOIN automation_statuses st ON st.id = tc.automation_status_id
LEFT JOIN users u ON u.id = tc.automated_by_id
LEFT JOIN test_case_tags tt ON tt.test_case_id = tc.id
LEFT JOIN tags t ON t.id = tt.tag_id`

const groupTestCases = `
GROUP BY tc.id, m.name, sm.name, p.name, st.name, u.name`

func scanTestCase(row pgx.CollectableRow) (domain.TestCase, error) {
	var tc domain.TestCase
	err := row.Scan(
		&tc.ID, &tc.TestcaseID, &tc.ModuleID, &tc.ModuleName,
		&tc.SubModuleID, &tc.SubModuleName,
		&tc.TestCaseDescription, &tc.PreConditions,
		&tc.TestScript, &tc.ExpectedResult,
		&tc.PriorityID, &tc.PriorityName,
		&tc.AutomationStatusID, &tc.AutomationStatusName,
		&tc.AutomatedByID, &tc.AutomatedByName,
		&tc.AutomationComments, &tc.ClubbedTCID,
		&tc.TagIDs, &tc.TagNames,
	)
	if len(tc.TagNames) == 0 {
		tc.TagNames = nil
	}
	return tc, err
}

func listTestCases(ctx context.Context, db DBTX, where string, args ...any) ([]domain.TestCase, error) {
	rows, err := db.Query(ctx, selectTestCases+where+groupTestCases+` ORDER BY tc.id`, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanTestCase)
}

func getTestCase(ctx context.Context, db DBTX, id int64) (domain.TestCase, error) {
	rows, err := db.Query(ctx, selectTestCases+` WHERE tc.id = $1`+groupTestCases, id)
	if err != nil {
		return domain.TestCase{}, err
	}
	return pgx.CollectExactlyOneRow(rows, scanTestCase)
}

func (s *Store) ListTestCases(ctx context.Context) ([]domain.TestCase, error) {
	out, err := listTestCases(ctx, s.pool, "")
	return out, mapError(err, opRead, "list test cases")
}

func (s *Store) ListTestCasesByModule(ctx context.Context, moduleID int64) ([]domain.TestCase, error) {
	out, err := listTestCases(ctx, s.pool, ` WHERE tc.module_id = $1`, moduleID)
	return out, mapError(err, opRead, "list test cases by module")
}

func (s *Store) GetTestCase(ctx context.Context, id int64) (domain.TestCase, error) {
	out, err := getTestCase(ctx, s.pool, id)
	return out, mapError(err, opRead, "get test case")
}

// CreateTestCase inserts the row and its tag links in one transaction.
func (s *Store) CreateTestCase(ctx context.Context, in domain.TestCaseInput) (domain.TestCase, error) {
	var out domain.TestCase
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var id int64
		err := tx.QueryRow(ctx, `
			INSERT INTO test_cases (
				testcase_id, module_id, sub_module_id, test_case_description,
				pre_conditions, test_script, expected_result, priority_id,
				automation_status_id, automated_by_id, automation_comments, clubbed_tc_id
			) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, NULLIF($11, ''), NULLIF($12, ''))
			RETURNING id`,
			in.TestcaseID, in.ModuleID, in.SubModuleID, in.TestCaseDescription,
			in.PreConditions, in.TestScript, in.ExpectedResult, in.PriorityID,
			in.AutomationStatusID, in.AutomatedByID, in.AutomationComments, in.ClubbedTCID,
		).Scan(&id)
		if err != nil {
			return err
		}
		if err := replaceTags(ctx, tx, id, in.TagIDs); err != nil {
			return err
		}
		out, err = getTestCase(ctx, tx, id)
		return err
	})
	return out, mapError(err, opWrite, "create test case")
}

// UpdateTestCase rewrites every column and replaces the tag set.
func (s *Store) UpdateTestCase(ctx context.Context, id int64, in domain.TestCaseInput) (domain.TestCase, error) {
	var out domain.TestCase
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := execOne(ctx, tx, `
			UPDATE test_cases SET
				testcase_id = $2, module_id = $3, sub_module_id = $4,
				test_case_description = $5, pre_conditions = NULLIF($6, ''),
				test_script = $7, expected_result = $8, priority_id = $9,
				automation_status_id = $10, automated_by_id = $11,
				automation_comments = NULLIF($12, ''), clubbed_tc_id = NULLIF($13, '')
			WHERE id = $1`,
			id, in.TestcaseID, in.ModuleID, in.SubModuleID,
			in.TestCaseDescription, in.PreConditions,
			in.TestScript, in.ExpectedResult, in.PriorityID,
			in.AutomationStatusID, in.AutomatedByID,
			in.AutomationComments, in.ClubbedTCID,
		)
		if err != nil {
			return err
		}
		if err := replaceTags(ctx, tx, id, in.TagIDs); err != nil {
			return err
		}
		out, err = getTestCase(ctx, tx, id)
		return err
	})
	return out, mapError(err, opWrite, "update test case")
}

func (s *Store) DeleteTestCase(ctx context.Context, id int64) error {
	return mapError(execOne(ctx, s.pool, `DELETE FROM test_cases WHERE id = $1`, id), opDelete, "delete test case")
}

// replaceTags sets the tag links of a test case, keeping the first
// occurrence of each id in order.
func replaceTags(ctx context.Context, db DBTX, testCaseID int64, tagIDs []int64) error {
	if _, err := db.Exec(ctx, `DELETE FROM test_case_tags WHERE test_case_id = $1`, testCaseID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}
	seen := make(map[int64]struct{}, len(tagIDs))
	pos := 0
	for _, tagID := range tagIDs {
		if _, ok := seen[tagID]; ok {
			continue
		}
		seen[tagID] = struct{}{}
		if _, err := db.Exec(ctx,
			`INSERT INTO test_case_tags (test_case_id, tag_id, position) VALUES ($1, $2, $3)`,
			testCaseID, tagID, pos,
		); err != nil {
			return err
		}
		pos++
	}
	return nil
}
