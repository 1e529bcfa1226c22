package pipeline

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"flashflow/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "flashflow/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "flashflow/internal/infrastructure/persistence/sqlite/uow"
	"flashflow/internal/ports"
)

type testCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newTestCache() *testCache {
	return &testCache{data: make(map[string]string)}
}

func (c *testCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *testCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *testCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *testCache) get(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key]
}

// capturePublisher records every published event in order.
type capturePublisher struct {
	mu     sync.Mutex
	events []ports.EventRecord
}

func (p *capturePublisher) Publish(_ context.Context, event ports.EventRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() {}

func (p *capturePublisher) recorded() []ports.EventRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.EventRecord, len(p.events))
	copy(out, p.events)
	return out
}

type testHarness struct {
	svc       *Service
	cache     *testCache
	publisher *capturePublisher
	db        *gorm.DB

	// now is the fake clock; advance it to simulate lease expiry and SLA
	// drift.
	now time.Time
}

func (h *testHarness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func setupHarness(t *testing.T) *testHarness {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "pipeline.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := db.AutoMigrate(&model.Video{}, &model.Event{}, &model.PipelineKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	cache := newTestCache()
	publisher := &capturePublisher{}
	svc := NewService(
		sqliterepo.NewVideoRepository(db),
		sqliteuow.NewUnitOfWork(db),
		cache,
		NewStaticPolicyProvider(DefaultPolicy()),
		publisher,
	)

	h := &testHarness{
		svc:       svc,
		cache:     cache,
		publisher: publisher,
		db:        db,
		now:       time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	svc.now = func() time.Time { return h.now }
	return h
}

func setupService(t *testing.T) (*Service, *testCache) {
	t.Helper()
	h := setupHarness(t)
	return h.svc, h.cache
}

// mustCreate seeds a video and returns its id.
func mustCreate(t *testing.T, h *testHarness, input CreateVideoInput) string {
	t.Helper()
	if input.Actor == "" {
		input.Actor = "planner"
	}
	detail, err := h.svc.CreateVideo(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateVideo() error = %v", err)
	}
	return detail.VideoID
}

// mustAttach locks a script so the RECORDED gate passes.
func mustAttach(t *testing.T, h *testHarness, videoID string) {
	t.Helper()
	err := h.svc.AttachScript(context.Background(), AttachScriptInput{
		VideoID: videoID,
		Text:    "hook, beats, call to action",
		Actor:   "scriptwriter",
	})
	if err != nil {
		t.Fatalf("AttachScript() error = %v", err)
	}
}

// mustTransition walks one edge and fails the test on any rejection.
func mustTransition(t *testing.T, h *testHarness, videoID, target, actor string) {
	t.Helper()
	_, err := h.svc.TransitionVideo(context.Background(), TransitionVideoInput{
		VideoID:      videoID,
		TargetStatus: target,
		Actor:        actor,
	})
	if err != nil {
		t.Fatalf("TransitionVideo(%s -> %s) error = %v", videoID, target, err)
	}
}
