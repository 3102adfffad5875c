package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/JonMunkholm/tcm/internal/importer"
)

// runFunc runs one import, reporting progress as rows complete.
type runFunc func(ctx context.Context, report importer.ProgressFunc) (*importer.Result, error)

// progressMsg carries one progress update into the program.
type progressMsg importer.Progress

// doneMsg ends the program with the run's outcome.
type doneMsg struct {
	res *importer.Result
	err error
}

const barWidth = 30

// importModel is the bubbletea view of a running import.
type importModel struct {
	file       string
	start      time.Time
	progress   importer.Progress
	cancel     context.CancelFunc
	cancelling bool
	done       *doneMsg
}

func (m importModel) Init() tea.Cmd {
	return nil
}

func (m importModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressMsg:
		m.progress = importer.Progress(msg)
	case doneMsg:
		m.done = &msg
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			// Stop after the row in progress; the run reports back with a
			// partial result.
			if !m.cancelling {
				m.cancelling = true
				m.cancel()
			}
		}
	}
	return m, nil
}

func (m importModel) View() string {
	if m.done != nil {
		return ""
	}

	p := m.progress
	var b strings.Builder
	fmt.Fprintf(&b, "Importing %s\n", m.file)
	if p.Total == 0 {
		b.WriteString("  loading catalogs...\n")
		return b.String()
	}

	filled := int(p.Percent() / 100 * barWidth)
	fmt.Fprintf(&b, "  [%s%s] %d/%d  %.0f%%\n",
		strings.Repeat("#", filled),
		strings.Repeat("-", barWidth-filled),
		p.Processed, p.Total, p.Percent())
	fmt.Fprintf(&b, "  ok %d  failed %d  elapsed %s\n",
		p.Succeeded, p.Failed, time.Since(m.start).Round(time.Second))
	if p.TestcaseID != "" {
		fmt.Fprintf(&b, "  last: %s\n", p.TestcaseID)
	}
	if m.cancelling {
		b.WriteString("  stopping after the current row...\n")
	} else {
		b.WriteString("  (ctrl+c to stop)\n")
	}
	return b.String()
}

// runInteractive drives run under a bubbletea program drawing on out.
func runInteractive(ctx context.Context, out io.Writer, file string, run runFunc) (*importer.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(importModel{file: file, start: time.Now(), cancel: cancel},
		tea.WithOutput(out),
	)

	go func() {
		res, err := run(ctx, func(pr importer.Progress) {
			p.Send(progressMsg(pr))
		})
		p.Send(doneMsg{res: res, err: err})
	}()

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("progress display: %w", err)
	}
	m := final.(importModel)
	if m.done == nil {
		return nil, context.Canceled
	}
	return m.done.res, m.done.err
}
