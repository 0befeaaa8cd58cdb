// Package paddingcheck probes the PKCS#7 validator: it must reject the
// classic malformed shapes, yet as the pipeline's only integrity gate it
// still waves through roughly 1 in 256 randomly corrupted last blocks.
package paddingcheck

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"cbcprobe/internal/cbc"
	"cbcprobe/internal/report"
	"cbcprobe/pkg/logx"
)

const probeName = "padding-check"

type Options struct {
	Active bool
	DryRun bool
	Trials int
}

func Run(ctx context.Context, opt Options) (*report.Results, error) {
	r := &report.Results{TargetType: "cbc", Probes: []string{probeName}, GeneratedAt: time.Now().UTC()}
	if opt.DryRun {
		r.Notes = append(r.Notes, "dry-run: padding probe skipped")
		return r, nil
	}

	const n = 16
	cases := []struct {
		name string
		buf  []byte
	}{
		{"last byte zero", append(validPadded(n), 0x00)},
		{"last byte above block size", append(validPadded(n), byte(n+1))},
		// A two-byte pad whose first pad byte disagrees with the count.
		{"inconsistent pad bytes", func() []byte {
			b := validPadded(n)
			b[n-2], b[n-1] = 0x03, 0x02
			return b
		}()},
	}
	if err := ctx.Err(); err != nil { return nil, err }
	for _, c := range cases {
		_, err := cbc.Unpad(c.buf, n)
		r.Add(report.Finding{
			Name:     fmt.Sprintf("Unpad rejects %s", c.name),
			Category: "Padding validation",
			Severity: report.Medium,
			Status:   choose(err != nil, report.Pass, report.Fail),
			Evidence: map[string]any{"probe": probeName, "case": c.name, "error": errString(err)},
			Mitigations: []string{"Reject malformed padding without revealing which check failed"},
			Timestamp: time.Now().UTC(),
		})
	}

	if opt.Active {
		trials := opt.Trials
		if trials <= 0 || trials > 1<<16 { trials = 4096 }
		accepted := 0
		buf := validPadded(n)
		for i := 0; i < trials; i++ {
			if i%256 == 0 {
				if err := ctx.Err(); err != nil { return nil, err }
			}
			var b [1]byte
			if _, err := rand.Read(b[:]); err != nil { return nil, err }
			buf[len(buf)-1] = b[0]
			if _, err := cbc.Unpad(buf, n); err == nil { accepted++ }
		}
		rate := float64(accepted) / float64(trials)
		logx.Debugf("paddingcheck: %d/%d random last bytes accepted", accepted, trials)
		// Chance acceptance is the documented weakness; informational.
		r.Add(report.Finding{
			Name:     "Random corruption acceptance rate (informational)",
			Category: "Weak integrity check",
			Severity: report.Medium,
			Status:   report.Inconclusive,
			Evidence: map[string]any{
				"probe":         probeName,
				"trials":        trials,
				"accepted":      accepted,
				"rate":          rate,
				"expected_rate": "~1/256 (only pad byte 0x01 validates against this block)",
			},
			Mitigations: []string{"Padding validation is not authentication; verify a MAC before unpadding"},
			Timestamp: time.Now().UTC(),
			Active:    true,
		})
	}
	return r, nil
}

// validPadded returns an n-byte buffer ending in one 0x01 pad byte.
func validPadded(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('A')
	}
	b[n-1] = 0x01
	return b
}

func choose[T any](cond bool, a, b T) T { if cond { return a }; return b }
func errString(err error) string { if err == nil { return "" }; return err.Error() }
