package report

import (
	"encoding/json"
	"fmt"
	"html"
	"strings"
)

// RenderHTML renders findings grouped per probe, with a summary table and
// status/severity badges.
func RenderHTML(r *Results) string {
	var b strings.Builder
	b.WriteString("<!doctype html><html><head><meta charset=\"utf-8\"><meta name=\"color-scheme\" content=\"light dark\"><title>cbcprobe report</title>")
	b.WriteString(`<style>
body{font-family:ui-sans-serif,system-ui,-apple-system,Segoe UI,Roboto,Helvetica,Arial,sans-serif;margin:24px;background:#ffffff;color:#111}
.h{font-weight:700;margin:0 0 8px 0}
.card{border:1px solid #eee;border-radius:8px;padding:12px;margin:12px 0;background:#fff}
.badge{display:inline-block;padding:2px 8px;border-radius:999px;font-size:12px;margin-left:8px}
.pass{background:#e6ffed;color:#006644}
.fail{background:#ffebe6;color:#bf2600}
.inc{background:#e6f7ff;color:#0747a6}
.sev-low{background:#eef6ff;color:#0747a6}
.sev-med{background:#fff7e6;color:#a36e00}
.sev-high{background:#ffe6e6;color:#bf2600}
.sev-crit{background:#000;color:#fff}
.active{background:#f0f5ff;color:#2f54eb}
.section{margin-top:16px;padding-top:8px;border-top:1px solid #f0f0f0}
@media (prefers-color-scheme: dark){
  body{background:#0b0b0b;color:#e6e6e6}
  .card{border-color:#2a2a2a;background:#121212}
  .section{border-top-color:#1a1a1a}
  .pass{background:#003d1f;color:#8dffb3}
  .fail{background:#3d0000;color:#ffb3b3}
  .inc{background:#002b4d;color:#8dccff}
  .sev-low{background:#0b2540;color:#8dccff}
  .sev-med{background:#402a00;color:#ffd58a}
  .sev-high{background:#401010;color:#ffb3b3}
  .sev-crit{background:#000;color:#fff}
  .active{background:#001a66;color:#99b3ff}
}
@media print{
  body{margin:8mm}
  .card{page-break-inside:avoid}
}
</style>`)
	b.WriteString("</head><body>")
	b.WriteString(fmt.Sprintf("<h1 class=\"h\">cbcprobe report<span class=\"badge\">%s</span></h1>", html.EscapeString(r.TargetType)))
	if len(r.Probes) > 0 {
		b.WriteString("<div>Probes: " + html.EscapeString(strings.Join(r.Probes, ", ")) + "</div>")
	}
	b.WriteString(fmt.Sprintf("<div>Generated: %s</div>", r.GeneratedAt.Format(timeLayout)))

	// Summary per probe plus overall banner.
	type agg struct{ pass, fail, inc int }
	sums := map[string]*agg{}
	overall := agg{}
	for _, f := range r.Findings {
		key := probeOf(f)
		if sums[key] == nil { sums[key] = &agg{} }
		switch f.Status {
		case Pass:
			sums[key].pass++
			overall.pass++
		case Fail:
			sums[key].fail++
			overall.fail++
		default:
			sums[key].inc++
			overall.inc++
		}
	}
	b.WriteString(fmt.Sprintf("<div class=\"section\"><div class=\"h\">Overall: <span class=\"badge pass\">PASS %d</span> <span class=\"badge fail\">FAIL %d</span> <span class=\"badge inc\">INC %d</span></div></div>", overall.pass, overall.fail, overall.inc))
	if len(sums) > 0 {
		b.WriteString("<div class=section><div class=h>Summary</div><table style=\"border-collapse:collapse;width:100%;font-size:14px\">")
		b.WriteString("<thead><tr><th style=\"text-align:left;border-bottom:1px solid #ddd\">Probe</th><th style=\"text-align:right;border-bottom:1px solid #ddd\">PASS</th><th style=\"text-align:right;border-bottom:1px solid #ddd\">FAIL</th><th style=\"text-align:right;border-bottom:1px solid #ddd\">INCONCLUSIVE</th></tr></thead><tbody>")
		for _, k := range probeOrder(r, sums) {
			a := sums[k]
			b.WriteString(fmt.Sprintf("<tr><td style=\"padding:6px 4px\">%s</td><td style=\"padding:6px 4px;text-align:right\">%d</td><td style=\"padding:6px 4px;text-align:right\">%d</td><td style=\"padding:6px 4px;text-align:right\">%d</td></tr>", html.EscapeString(k), a.pass, a.fail, a.inc))
		}
		b.WriteString("</tbody></table></div>")
	}

	// Detail cards grouped per probe, in the same order.
	groups := map[string][]Finding{}
	for _, f := range r.Findings {
		key := probeOf(f)
		groups[key] = append(groups[key], f)
	}
	for _, k := range probeOrder(r, groups) {
		b.WriteString(fmt.Sprintf("<h2 class=\"h section\">%s</h2>", html.EscapeString(k)))
		for _, f := range groups[k] {
			cl := "inc"
			if f.Status == Pass { cl = "pass" } else if f.Status == Fail { cl = "fail" }
			sevCl := "sev-low"
			switch f.Severity {
			case Medium:
				sevCl = "sev-med"
			case High:
				sevCl = "sev-high"
			case Critical:
				sevCl = "sev-crit"
			}
			b.WriteString("<div class=card>")
			b.WriteString("<div class=h>")
			b.WriteString(html.EscapeString(f.Name))
			b.WriteString(fmt.Sprintf(" <span class=\"badge %s\">%s</span>", cl, f.Status))
			b.WriteString(fmt.Sprintf(" <span class=\"badge %s\">%s</span>", sevCl, f.Severity))
			if f.Active { b.WriteString(" <span class=\"badge active\">ACTIVE</span>") }
			b.WriteString("</div>")
			b.WriteString(fmt.Sprintf("<div>Category: %s</div>", html.EscapeString(f.Category)))
			if f.Evidence != nil {
				b.WriteString("<pre style=\"white-space:pre-wrap\">")
				b.WriteString(html.EscapeString(asJSON(f.Evidence)))
				b.WriteString("</pre>")
			}
			if len(f.Mitigations) > 0 {
				b.WriteString("<ul>")
				for _, m := range f.Mitigations {
					b.WriteString("<li>" + html.EscapeString(m) + "</li>")
				}
				b.WriteString("</ul>")
			}
			b.WriteString("</div>")
		}
	}
	b.WriteString("</body></html>")
	return b.String()
}

const timeLayout = "2006-01-02 15:04:05 MST"

// probeOf groups findings by the "probe" evidence key; anything without one
// lands under General.
func probeOf(f Finding) string {
	if m, ok := f.Evidence.(map[string]any); ok {
		if pv, ok2 := m["probe"].(string); ok2 && pv != "" {
			return pv
		}
	}
	return "General"
}

// probeOrder keeps a stable display order: General first, declared probes in
// order, then any stragglers.
func probeOrder[T any](r *Results, groups map[string]T) []string {
	var order []string
	seen := map[string]bool{}
	if _, ok := groups["General"]; ok {
		order = append(order, "General")
		seen["General"] = true
	}
	for _, p := range r.Probes {
		if _, ok := groups[p]; ok && !seen[p] {
			order = append(order, p)
			seen[p] = true
		}
	}
	for k := range groups {
		if !seen[k] {
			order = append(order, k)
			seen[k] = true
		}
	}
	return order
}

func asJSON(v any) string {
	bs, _ := json.MarshalIndent(v, "", "  ")
	return string(bs)
}
