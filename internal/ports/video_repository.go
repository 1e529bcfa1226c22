package ports

import (
	"context"
	"errors"
	"time"
)

var (
	ErrVideoNotFound = errors.New("video not found")

	// ErrClaimConflict means a compare-and-swap on the claim fields matched
	// zero rows: someone else won the race since the record was read.
	ErrClaimConflict = errors.New("claim state changed concurrently")
)

type VideoFilter struct {
	Statuses        []string
	ClaimedBy       string
	IncludeTerminal bool
}

type EventFilter struct {
	VideoID   string
	EventType string
	Since     *time.Time
	Until     *time.Time
	Limit     int
}

type VideoRecord struct {
	VideoID             string
	Title               string
	RecordingStatus     string
	ScriptLockedText    *string
	ScriptLockedVersion *int
	ScriptNotRequired   bool
	ClaimedBy           *string
	ClaimedAt           *time.Time
	ClaimExpiresAt      *time.Time
	SlaDeadlineAt       *time.Time
	LastStatusChangedAt *time.Time
	FinalVideoURL       *string
	PostedURL           *string
	PostedPlatform      *string
	ConceptID           *string
	ProductID           *string
	PostingAccountID    *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

type EventRecord struct {
	EventID       uint64
	VideoID       string
	EventType     string
	FromStatus    *string
	ToStatus      *string
	Actor         string
	CorrelationID string
	Details       string
	CreatedAt     time.Time
}

type EventCreate struct {
	VideoID       string
	EventType     string
	FromStatus    *string
	ToStatus      *string
	Actor         string
	CorrelationID string
	Details       string
	CreatedAt     time.Time
}

// ClaimState is the claim triple used for compare-and-swap updates. The
// expected side matches on ClaimedBy only; the next side is written in full.
type ClaimState struct {
	ClaimedBy      *string
	ClaimedAt      *time.Time
	ClaimExpiresAt *time.Time
}

type VideoReadRepository interface {
	ListVideos(ctx context.Context, filter VideoFilter) ([]VideoRecord, error)
	GetVideo(ctx context.Context, videoID string) (VideoRecord, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]EventRecord, error)
}

type VideoRepository interface {
	VideoReadRepository
	CreateVideo(ctx context.Context, record VideoRecord) (VideoRecord, error)
	UpdateStatus(ctx context.Context, videoID string, status string, slaDeadlineAt *time.Time, changedAt time.Time) error
	SetLockedScript(ctx context.Context, videoID string, text string, version int, updatedAt time.Time) error
	SetFinalVideoURL(ctx context.Context, videoID string, url string, updatedAt time.Time) error
	SetPostedArtifacts(ctx context.Context, videoID string, postedURL string, postedPlatform string, updatedAt time.Time) error

	// CompareAndSwapClaim rewrites the claim fields only if claimed_by still
	// matches expected.ClaimedBy. Returns ErrClaimConflict otherwise.
	CompareAndSwapClaim(ctx context.Context, videoID string, expected ClaimState, next ClaimState, updatedAt time.Time) error

	AppendEvent(ctx context.Context, input EventCreate) error
}
