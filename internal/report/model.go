package report

import "time"

type Severity string

const (
	Low      Severity = "LOW"
	Medium   Severity = "MEDIUM"
	High     Severity = "HIGH"
	Critical Severity = "CRITICAL"
)

type Status string

const (
	Pass         Status = "PASS"
	Fail         Status = "FAIL"
	Inconclusive Status = "INCONCLUSIVE"
)

// Finding is one probe observation. Status reads from the defender's side:
// Fail means the construction under test accepted a forgery or leaked
// something it should not have.
type Finding struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Severity    Severity    `json:"severity"`
	Status      Status      `json:"status"`
	Evidence    interface{} `json:"evidence,omitempty"`
	Mitigations []string    `json:"mitigations,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Active      bool        `json:"active,omitempty"`
}

type Results struct {
	TargetType  string    `json:"target_type"`
	Probes      []string  `json:"probes,omitempty"`
	Findings    []Finding `json:"findings"`
	Notes       []string  `json:"notes,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}

func (r *Results) Add(f Finding) { r.Findings = append(r.Findings, f) }

func (r *Results) Merge(o *Results) {
	r.Probes = append(r.Probes, o.Probes...)
	r.Findings = append(r.Findings, o.Findings...)
	r.Notes = append(r.Notes, o.Notes...)
}

func (r *Results) HasFindings() bool {
	for _, f := range r.Findings {
		if f.Status == Fail { return true }
		if f.Severity == High || f.Severity == Critical {
			if f.Status != Pass { return true }
		}
	}
	return false
}
