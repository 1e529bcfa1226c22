package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"flashflow/internal/bootstrap/logging"
	"flashflow/internal/domain/video"
	"flashflow/internal/errs"
	"flashflow/internal/ports"
)

// Audit event types. Event rows are append-only.
const (
	EventCreated        = "created"
	EventClaimed        = "claimed"
	EventReleased       = "released"
	EventStatusChange   = "status_change"
	EventScriptAttached = "script_attached"
)

var ErrActorRequired = errors.New("actor is required")

type Service struct {
	repo      ports.VideoRepository
	uow       ports.UnitOfWork
	cache     ports.Cache
	policy    *PolicyProvider
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewService wires the pipeline usecases. cache and publisher may be nil;
// both are best-effort side channels.
func NewService(repo ports.VideoRepository, uow ports.UnitOfWork, cache ports.Cache, policy *PolicyProvider, publisher ports.EventPublisher) *Service {
	if policy == nil {
		policy = NewStaticPolicyProvider(DefaultPolicy())
	}
	return &Service{
		repo:      repo,
		uow:       uow,
		cache:     cache,
		policy:    policy,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CreateVideoInput struct {
	Title             string
	ScriptNotRequired bool
	ConceptID         string
	ProductID         string
	PostingAccountID  string
	Actor             string
	CorrelationID     string
}

type ClaimVideoInput struct {
	VideoID       string
	Actor         string
	CorrelationID string
}

type ReleaseVideoInput struct {
	VideoID       string
	Actor         string
	Force         bool
	CorrelationID string
}

type TransitionVideoInput struct {
	VideoID       string
	TargetStatus  string
	Actor         string
	Force         bool
	FinalVideoURL string
	PostedURL     string
	PostedPlatform string
	CorrelationID string
}

type AttachScriptInput struct {
	VideoID       string
	Text          string
	Version       int
	Actor         string
	CorrelationID string
}

type ListVideosInput struct {
	Statuses        []string
	ClaimedBy       string
	IncludeTerminal bool
}

type ListEventsInput struct {
	VideoID   string
	EventType string
	Since     *time.Time
	Until     *time.Time
	Limit     int
}

type LeaseView struct {
	VideoID   string     `json:"video_id"`
	ClaimedBy string     `json:"claimed_by"`
	ClaimedAt time.Time  `json:"claimed_at"`
	ExpiresAt *time.Time `json:"claim_expires_at,omitempty"`
	Renewed   bool       `json:"renewed,omitempty"`
}

type NextActionView struct {
	Type               string `json:"type"`
	Label              string `json:"label"`
	RequiredCapability string `json:"required_capability,omitempty"`
}

type ReadinessView struct {
	HasScript bool `json:"has_script"`
	HasRaw    bool `json:"has_raw"`
	HasFinal  bool `json:"has_final"`
}

type VideoDetail struct {
	VideoID             string     `json:"id"`
	Title               string     `json:"title"`
	RecordingStatus     string     `json:"recording_status"`
	ScriptLockedText    string     `json:"script_locked_text,omitempty"`
	ScriptLockedVersion int        `json:"script_locked_version,omitempty"`
	ScriptNotRequired   bool       `json:"script_not_required"`
	Lease               *LeaseView `json:"lease,omitempty"`
	SlaDeadlineAt       *time.Time `json:"sla_deadline_at,omitempty"`
	LastStatusChangedAt *time.Time `json:"last_status_changed_at,omitempty"`
	FinalVideoURL       string     `json:"final_video_url,omitempty"`
	PostedURL           string     `json:"posted_url,omitempty"`
	PostedPlatform      string     `json:"posted_platform,omitempty"`
	ConceptID           string     `json:"concept_id,omitempty"`
	ProductID           string     `json:"product_id,omitempty"`
	PostingAccountID    string     `json:"posting_account_id,omitempty"`

	NextAction         NextActionView `json:"next_action"`
	Readiness          ReadinessView  `json:"readiness"`
	CanRecord          bool           `json:"can_record"`
	CanMarkEdited      bool           `json:"can_mark_edited"`
	CanMarkReadyToPost bool           `json:"can_mark_ready_to_post"`
	CanPost            bool           `json:"can_post"`
	AllowedTransitions []string       `json:"allowed_transitions"`

	SlaStatus         string `json:"sla_status"`
	PriorityScore     int64  `json:"priority_score"`
	AgeMinutesInStage int64  `json:"age_minutes_in_stage"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type VideoListItem struct {
	VideoID           string     `json:"id"`
	Title             string     `json:"title"`
	RecordingStatus   string     `json:"recording_status"`
	ClaimedBy         string     `json:"claimed_by,omitempty"`
	NextActionType    string     `json:"next_action_type"`
	SlaStatus         string     `json:"sla_status"`
	SlaDeadlineAt     *time.Time `json:"sla_deadline_at,omitempty"`
	PriorityScore     int64      `json:"priority_score"`
	AgeMinutesInStage int64      `json:"age_minutes_in_stage"`
}

type EventItem struct {
	EventID       uint64    `json:"id"`
	VideoID       string    `json:"video_id"`
	EventType     string    `json:"event_type"`
	FromStatus    string    `json:"from_status,omitempty"`
	ToStatus      string    `json:"to_status,omitempty"`
	Actor         string    `json:"actor"`
	CorrelationID string    `json:"correlation_id"`
	Details       string    `json:"details,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type TransitionResult struct {
	VideoID       string     `json:"video_id"`
	FromStatus    string     `json:"from_status"`
	ToStatus      string     `json:"to_status"`
	SlaDeadlineAt *time.Time `json:"sla_deadline_at,omitempty"`
}

// PolicyProvider exposes the active policy source so callers can run the
// hot-reload watcher.
func (s *Service) PolicyProvider() *PolicyProvider {
	return s.policy
}

func (s *Service) checkDeps(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}
	if s.repo == nil {
		return errors.New("video repository is required")
	}
	if s.uow == nil {
		return errors.New("unit of work is required")
	}
	return nil
}

func (s *Service) setCacheBestEffort(ctx context.Context, key string, value string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Set(ctx, key, value, 0)
}

func (s *Service) publishBestEffort(ctx context.Context, event ports.EventRecord) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logging.Warn(ctx, "event publish failed",
			slog.String("video_id", event.VideoID),
			slog.Any("err", errs.Loggable(err)))
	}
}

func cacheVideoStatusKey(videoID string) string {
	return "video_status:" + videoID
}

func cacheVideoClaimKey(videoID string) string {
	return "video_claim:" + videoID
}

func normalizeCorrelationID(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return uuid.NewString()
	}
	return trimmed
}

func marshalDetails(details map[string]any) string {
	if len(details) == 0 {
		return ""
	}
	raw, err := json.Marshal(details)
	if err != nil {
		return ""
	}
	return string(raw)
}

func leaseFromRecord(record ports.VideoRecord) video.Lease {
	lease := video.Lease{}
	if record.ClaimedBy != nil {
		lease.ClaimedBy = *record.ClaimedBy
	}
	if record.ClaimedAt != nil {
		lease.ClaimedAt = *record.ClaimedAt
	}
	lease.ExpiresAt = record.ClaimExpiresAt
	return lease
}

func snapshotFromRecord(record ports.VideoRecord) video.Snapshot {
	return video.Snapshot{
		Status:            video.RecordingStatus(record.RecordingStatus),
		HasLockedScript:   record.ScriptLockedText != nil && strings.TrimSpace(*record.ScriptLockedText) != "",
		ScriptNotRequired: record.ScriptNotRequired,
		HasFinalVideo:     record.FinalVideoURL != nil && strings.TrimSpace(*record.FinalVideoURL) != "",
	}
}

func derefString(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}

func derefInt(ptr *int) int {
	if ptr == nil {
		return 0
	}
	return *ptr
}
