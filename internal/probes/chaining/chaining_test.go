package chaining

import (
	"context"
	"testing"

	"cbcprobe/internal/report"
)

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Options{}); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRun(t *testing.T) {
	r, err := Run(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(r.Findings))
	}
	for _, f := range r.Findings {
		switch f.Name {
		case "Single-bit flip confined to two blocks":
			if f.Status != report.Pass {
				t.Errorf("confinement: got %s, want PASS", f.Status)
			}
		case "Interior-block forge via preceding ciphertext block":
			if f.Status != report.Fail {
				t.Errorf("interior forge: got %s, want FAIL", f.Status)
			}
		default:
			t.Errorf("unexpected finding %q", f.Name)
		}
	}
}
