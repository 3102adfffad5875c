// Package templates holds the HTML components of the web UI.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/tcm/internal/core"
)

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem;color:#1f2937}
.cards{display:flex;gap:1rem;margin-bottom:2rem}
.card{border:1px solid #e5e7eb;border-radius:8px;padding:1rem 1.5rem;min-width:10rem}
.card .value{font-size:1.75rem;font-weight:600}
table{border-collapse:collapse;margin-bottom:2rem}
th,td{border:1px solid #e5e7eb;padding:.35rem .75rem;text-align:left}
th{background:#f9fafb}
td.num{text-align:right}`

// DashboardPage renders the full dashboard document.
func DashboardPage(d core.Dashboard) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<title>Test Case Dashboard</title><style>` + pageStyle + `</style></head><body>`)
		p.raw(`<h1>Test Case Dashboard</h1><div class="cards">`)
		card(p, "Total Test Cases", fmt.Sprint(d.TotalTestCases))
		card(p, "Modules", fmt.Sprint(d.TotalModules))
		card(p, "Sub-Modules", fmt.Sprint(d.TotalSubModules))
		card(p, "Automation Rate", d.AutomationRateLabel())
		p.raw(`</div>`)

		countTable(p, "By Automation Status", "Status", d.ByStatus)
		countTable(p, "By Priority", "Priority", d.ByPriority)
		breakdownTable(p, "Sub-Module by Automation Status", d.SubModuleByStatus)
		breakdownTable(p, "Sub-Module by Priority", d.SubModuleByPriority)

		p.raw(`</body></html>`)
		return p.err
	})
}

// printer accumulates the first write error so components read linearly.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

func card(p *printer, label, value string) {
	p.raw(`<div class="card"><div class="label">`)
	p.text(label)
	p.raw(`</div><div class="value">`)
	p.text(value)
	p.raw(`</div></div>`)
}

func countTable(p *printer, title, column string, counts []core.Count) {
	p.raw(`<h2>`)
	p.text(title)
	p.raw(`</h2>`)
	if len(counts) == 0 {
		p.raw(`<p>No test cases yet.</p>`)
		return
	}
	p.raw(`<table><thead><tr><th>`)
	p.text(column)
	p.raw(`</th><th>Count</th></tr></thead><tbody>`)
	for _, c := range counts {
		p.raw(`<tr><td>`)
		p.text(c.Name)
		p.raw(`</td><td class="num">`)
		p.text(fmt.Sprint(c.Count))
		p.raw(`</td></tr>`)
	}
	p.raw(`</tbody></table>`)
}

func breakdownTable(p *printer, title string, rows []core.Breakdown) {
	p.raw(`<h2>`)
	p.text(title)
	p.raw(`</h2>`)
	if len(rows) == 0 {
		p.raw(`<p>No test cases yet.</p>`)
		return
	}
	p.raw(`<table><thead><tr><th>Sub-Module</th>`)
	for _, c := range rows[0].Counts {
		p.raw(`<th>`)
		p.text(c.Name)
		p.raw(`</th>`)
	}
	p.raw(`</tr></thead><tbody>`)
	for _, row := range rows {
		p.raw(`<tr><td>`)
		p.text(row.SubModule)
		p.raw(`</td>`)
		for _, c := range row.Counts {
			p.raw(`<td class="num">`)
			p.text(fmt.Sprint(c.Count))
			p.raw(`</td>`)
		}
		p.raw(`</tr>`)
	}
	p.raw(`</tbody></table>`)
}
