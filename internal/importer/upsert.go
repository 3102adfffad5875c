package importer

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/tcm/internal/domain"
)

// Upserter creates or updates test cases keyed by testcase ID.
type Upserter struct {
	gw  Gateway
	cat *Catalogs
}

func NewUpserter(gw Gateway, cat *Catalogs) *Upserter {
	return &Upserter{gw: gw, cat: cat}
}

// Upsert updates the catalog test case whose testcase ID matches in
// (ignoring case) or creates a new one. Created test cases join the catalog,
// so a repeated ID later in the same run becomes an update.
func (u *Upserter) Upsert(ctx context.Context, in domain.TestCaseInput) (created bool, err error) {
	if i := u.find(in.TestcaseID); i >= 0 {
		tc, err := u.gw.UpdateTestCase(ctx, u.cat.TestCases[i].ID, in)
		if err != nil {
			return false, fmt.Errorf("Update failed: %s", messageOf(err, "Failed to update test case"))
		}
		u.cat.TestCases[i] = tc
		return false, nil
	}

	tc, err := u.gw.CreateTestCase(ctx, in)
	if err != nil {
		return false, fmt.Errorf("Create failed: %s", messageOf(err, "Failed to create test case"))
	}
	u.cat.TestCases = append(u.cat.TestCases, tc)
	return true, nil
}

func (u *Upserter) find(testcaseID string) int {
	for i, tc := range u.cat.TestCases {
		if domain.SameName(tc.TestcaseID, testcaseID) {
			return i
		}
	}
	return -1
}
