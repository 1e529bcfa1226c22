package pipeline

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"flashflow/internal/domain/video"
	"flashflow/internal/errs"
)

// Policy carries the resolved operational knobs: claim lease length, SLA
// warning window, and the per-stage deadlines used to compute
// sla_deadline_at on every transition. Stages without an entry have no due
// date (terminal stages, REJECTED).
type Policy struct {
	LeaseDuration  time.Duration
	WarnThreshold  time.Duration
	StageDeadlines map[video.RecordingStatus]time.Duration
}

// StageDeadline returns the deadline window for a stage, or false when the
// stage carries no due date.
func (p Policy) StageDeadline(status video.RecordingStatus) (time.Duration, bool) {
	d, ok := p.StageDeadlines[status]
	return d, ok
}

// DefaultPolicy mirrors the turnaround targets the production team runs
// with: start recording within 4h, finish an edit within 24h, review within
// 8h.
func DefaultPolicy() Policy {
	return Policy{
		LeaseDuration: 4 * time.Hour,
		WarnThreshold: 2 * time.Hour,
		StageDeadlines: map[video.RecordingStatus]time.Duration{
			video.StatusNeedsScript:        24 * time.Hour,
			video.StatusGeneratingScript:   1 * time.Hour,
			video.StatusNotRecorded:        4 * time.Hour,
			video.StatusRecorded:           24 * time.Hour,
			video.StatusEdited:             24 * time.Hour,
			video.StatusReadyForReview:     8 * time.Hour,
			video.StatusApprovedNeedsEdits: 8 * time.Hour,
			video.StatusReadyToPost:        24 * time.Hour,
		},
	}
}

type policyFile struct {
	Claim struct {
		LeaseDuration string `toml:"lease_duration"`
	} `toml:"claim"`
	SLA struct {
		WarnThreshold  string            `toml:"warn_threshold"`
		StageDeadlines map[string]string `toml:"stage_deadlines"`
	} `toml:"sla"`
}

// LoadPolicy overlays a TOML policy file on the defaults. Durations use Go
// syntax ("4h", "90m"). An unknown stage name is an error rather than a
// silent no-op.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()

	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, errs.Wrapf(err, "read policy file %q", path)
	}

	var file policyFile
	if err := toml.Unmarshal(raw, &file); err != nil {
		return Policy{}, errs.Wrapf(err, "parse policy file %q", path)
	}

	if file.Claim.LeaseDuration != "" {
		d, err := time.ParseDuration(file.Claim.LeaseDuration)
		if err != nil || d <= 0 {
			return Policy{}, fmt.Errorf("invalid claim.lease_duration %q", file.Claim.LeaseDuration)
		}
		policy.LeaseDuration = d
	}

	if file.SLA.WarnThreshold != "" {
		d, err := time.ParseDuration(file.SLA.WarnThreshold)
		if err != nil || d < 0 {
			return Policy{}, fmt.Errorf("invalid sla.warn_threshold %q", file.SLA.WarnThreshold)
		}
		policy.WarnThreshold = d
	}

	if len(file.SLA.StageDeadlines) > 0 {
		deadlines := make(map[video.RecordingStatus]time.Duration, len(file.SLA.StageDeadlines))
		for rawStage, rawDuration := range file.SLA.StageDeadlines {
			stage, err := video.ParseStatus(rawStage)
			if err != nil {
				return Policy{}, errs.Wrapf(err, "sla.stage_deadlines key %q", rawStage)
			}
			d, err := time.ParseDuration(rawDuration)
			if err != nil || d <= 0 {
				return Policy{}, fmt.Errorf("invalid sla.stage_deadlines[%s] %q", stage, rawDuration)
			}
			deadlines[stage] = d
		}
		policy.StageDeadlines = deadlines
	}

	return policy, nil
}
