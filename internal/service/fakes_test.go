package service

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"echoreport/internal/cache"
	"echoreport/internal/model"
	"echoreport/internal/repository"
)

type fakeDrafts struct {
	mu      sync.Mutex
	drafts  map[string]model.Draft
	saveErr error
}

func newFakeDrafts() *fakeDrafts {
	return &fakeDrafts{drafts: map[string]model.Draft{}}
}

func (f *fakeDrafts) Save(_ context.Context, d *model.Draft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	cp := *d
	cp.Values = maps.Clone(d.Values)
	f.drafts[d.ID] = cp
	return nil
}

func (f *fakeDrafts) Get(_ context.Context, id string) (*model.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[id]
	if !ok {
		return nil, cache.ErrDraftNotFound
	}
	d.Values = maps.Clone(d.Values)
	return &d, nil
}

func (f *fakeDrafts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.drafts, id)
	return nil
}

func (f *fakeDrafts) has(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.drafts[id]
	return ok
}

type fakeReports struct {
	mu        sync.Mutex
	reports   []*model.Report
	createErr error
}

func (f *fakeReports) Create(_ context.Context, r *model.Report) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.reports = append(f.reports, r)
	return nil
}

func (f *fakeReports) GetByID(_ context.Context, id string) (*model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeReports) List(_ context.Context, limit int) ([]*model.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := slices.Clone(f.reports)
	slices.SortStableFunc(out, func(a, b *model.Report) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReports) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.reports {
		if r.ID == id {
			f.reports = slices.Delete(f.reports, i, i+1)
			return nil
		}
	}
	return repository.ErrNotFound
}

type broadcast struct {
	session string
	msgType string
	payload interface{}
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	sent   []broadcast
	closed []string
}

func (f *fakeBroadcaster) BroadcastToSession(sessionID, msgType string, payload interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, broadcast{sessionID, msgType, payload})
}

func (f *fakeBroadcaster) CloseSession(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, sessionID)
}

var errStoreDown = errors.New("store unavailable")
