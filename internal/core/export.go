package core

import (
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/tcm/internal/tabular"
)

// ExportCSV writes every test case in the import column layout, so the
// file can be edited and imported again. See tabular.ExportFileName for
// the download name.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	cases, err := s.store.ListTestCases(ctx)
	if err != nil {
		return fmt.Errorf("list test cases: %w", err)
	}
	if err := tabular.WriteExport(w, cases); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// Template writes the import template: the header and one sample row.
func (s *Service) Template(w io.Writer) error {
	if err := tabular.WriteTemplate(w); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}
