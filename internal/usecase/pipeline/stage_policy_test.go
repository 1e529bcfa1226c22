package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"flashflow/internal/domain/video"
)

func writePolicyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write policy file: %v", err)
	}
	return path
}

func TestLoadPolicyOverlaysDefaults(t *testing.T) {
	path := writePolicyFile(t, `
[claim]
lease_duration = "90m"

[sla]
warn_threshold = "45m"

[sla.stage_deadlines]
NOT_RECORDED = "2h"
`)

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}

	if policy.LeaseDuration != 90*time.Minute {
		t.Fatalf("lease = %v, want 90m", policy.LeaseDuration)
	}
	if policy.WarnThreshold != 45*time.Minute {
		t.Fatalf("warn = %v, want 45m", policy.WarnThreshold)
	}
	if d, ok := policy.StageDeadline(video.StatusNotRecorded); !ok || d != 2*time.Hour {
		t.Fatalf("NOT_RECORDED deadline = %v, %v", d, ok)
	}
	// An explicit stage table replaces the defaults wholesale.
	if _, ok := policy.StageDeadline(video.StatusRecorded); ok {
		t.Fatal("RECORDED kept a default deadline after an explicit table")
	}
}

func TestLoadPolicyPartialFileKeepsStageDefaults(t *testing.T) {
	path := writePolicyFile(t, `
[claim]
lease_duration = "8h"
`)

	policy, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("LoadPolicy() error = %v", err)
	}
	if policy.LeaseDuration != 8*time.Hour {
		t.Fatalf("lease = %v, want 8h", policy.LeaseDuration)
	}
	if d, ok := policy.StageDeadline(video.StatusNotRecorded); !ok || d != 4*time.Hour {
		t.Fatalf("NOT_RECORDED default deadline = %v, %v", d, ok)
	}
}

func TestLoadPolicyRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"unknown stage", "[sla.stage_deadlines]\nIN_REVIEW = \"4h\"\n"},
		{"bad duration", "[claim]\nlease_duration = \"four hours\"\n"},
		{"negative lease", "[claim]\nlease_duration = \"-1h\"\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writePolicyFile(t, tc.content)
			if _, err := LoadPolicy(path); err == nil {
				t.Fatal("LoadPolicy() error = nil, want parse failure")
			}
		})
	}
}

func TestPolicyProviderReload(t *testing.T) {
	path := writePolicyFile(t, "[claim]\nlease_duration = \"1h\"\n")

	provider, err := NewPolicyProvider(path)
	if err != nil {
		t.Fatalf("NewPolicyProvider() error = %v", err)
	}
	if got := provider.Current().LeaseDuration; got != time.Hour {
		t.Fatalf("initial lease = %v, want 1h", got)
	}

	if err := os.WriteFile(path, []byte("[claim]\nlease_duration = \"30m\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite policy: %v", err)
	}
	if err := provider.Reload(context.Background()); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if got := provider.Current().LeaseDuration; got != 30*time.Minute {
		t.Fatalf("reloaded lease = %v, want 30m", got)
	}

	// A broken rewrite keeps the previous policy active.
	if err := os.WriteFile(path, []byte("[claim]\nlease_duration = \"oops\"\n"), 0o644); err != nil {
		t.Fatalf("rewrite policy: %v", err)
	}
	if err := provider.Reload(context.Background()); err == nil {
		t.Fatal("Reload() error = nil, want parse failure")
	}
	if got := provider.Current().LeaseDuration; got != 30*time.Minute {
		t.Fatalf("lease after failed reload = %v, want 30m", got)
	}
}
