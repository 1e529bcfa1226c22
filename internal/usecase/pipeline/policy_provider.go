package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"flashflow/internal/bootstrap/logging"
	"flashflow/internal/errs"
)

// PolicyProvider holds the active Policy and supports hot reload when the
// policy file changes on disk. Reads never block writers.
type PolicyProvider struct {
	path    string
	current atomic.Pointer[Policy]
}

// NewStaticPolicyProvider pins a fixed policy. Used when no file is
// configured and in tests.
func NewStaticPolicyProvider(policy Policy) *PolicyProvider {
	p := &PolicyProvider{}
	p.current.Store(&policy)
	return p
}

// NewPolicyProvider loads the policy file once; a later Watch keeps it fresh.
func NewPolicyProvider(path string) (*PolicyProvider, error) {
	p := &PolicyProvider{path: strings.TrimSpace(path)}
	if p.path == "" {
		policy := DefaultPolicy()
		p.current.Store(&policy)
		return p, nil
	}

	policy, err := LoadPolicy(p.path)
	if err != nil {
		return nil, err
	}
	p.current.Store(&policy)
	return p, nil
}

func (p *PolicyProvider) Current() Policy {
	return *p.current.Load()
}

// Reload re-reads the policy file. The previous policy stays active when the
// new file fails to parse.
func (p *PolicyProvider) Reload(ctx context.Context) error {
	if p.path == "" {
		return nil
	}

	policy, err := LoadPolicy(p.path)
	if err != nil {
		return errs.Wrap(err, "reload policy")
	}
	p.current.Store(&policy)
	logging.Info(ctx, "sla policy reloaded", slog.String("path", p.path))
	return nil
}

// Watch blocks until ctx is done, reloading the policy whenever the file is
// rewritten. Editors replace files rather than writing in place, so the
// watch is on the directory.
func (p *PolicyProvider) Watch(ctx context.Context) error {
	if p.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errs.Wrap(err, "create policy watcher")
	}
	defer watcher.Close()

	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		return errs.Wrapf(err, "watch policy directory %q", dir)
	}

	target := filepath.Clean(p.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := p.Reload(ctx); err != nil {
				logging.Warn(ctx, "policy reload failed, keeping previous policy", slog.Any("err", errs.Loggable(err)))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn(ctx, "policy watcher error", slog.Any("err", errs.Loggable(err)))
		}
	}
}
