package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"revision-history-server/internal/domain"
)

type mockRevisionRepo struct {
	mu         sync.Mutex
	revisions  []*domain.Revision
	saves      int
	failOnSave int
	findErr    error
	lastQuery  *domain.RevisionQuery
}

func newMockRevisionRepo(revisions ...*domain.Revision) *mockRevisionRepo {
	return &mockRevisionRepo{revisions: revisions}
}

func (m *mockRevisionRepo) Save(ctx context.Context, revision *domain.Revision) (*domain.Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saves++
	if m.failOnSave > 0 && m.saves == m.failOnSave {
		return nil, errors.New("store timeout")
	}

	saved := *revision
	if saved.UUID == "" {
		saved.UUID = fmt.Sprintf("rev-%d", len(m.revisions)+1)
	}
	m.revisions = append(m.revisions, &saved)

	return &saved, nil
}

func (m *mockRevisionRepo) FindByItemID(ctx context.Context, query domain.RevisionQuery) ([]*domain.Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastQuery = &query
	if m.findErr != nil {
		return nil, m.findErr
	}

	var out []*domain.Revision
	for _, r := range m.revisions {
		if r.ItemUUID != query.ItemUUID {
			continue
		}
		if query.AfterDate != nil && r.CreationDate.Before(*query.AfterDate) {
			continue
		}
		c := *r
		out = append(out, &c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreationDate.After(out[j].CreationDate)
	})

	return out, nil
}

func (m *mockRevisionRepo) FindOneByID(ctx context.Context, itemUUID, uuid string) (*domain.Revision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.revisions {
		if r.ItemUUID == itemUUID && r.UUID == uuid {
			c := *r
			return &c, nil
		}
	}
	return nil, nil
}

func (m *mockRevisionRepo) forItem(itemUUID string) []*domain.Revision {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Revision
	for _, r := range m.revisions {
		if r.ItemUUID == itemUUID {
			out = append(out, r)
		}
	}
	return out
}

type mockItemRepo struct {
	items map[string]*domain.Item
	err   error
}

func newMockItemRepo(items ...*domain.Item) *mockItemRepo {
	m := &mockItemRepo{items: make(map[string]*domain.Item)}
	for _, it := range items {
		m.items[it.UUID] = it
	}
	return m
}

func (m *mockItemRepo) FindByUUID(ctx context.Context, uuid string) (*domain.Item, error) {
	if m.err != nil {
		return nil, m.err
	}
	if it, ok := m.items[uuid]; ok {
		return it, nil
	}
	return nil, nil
}

type mockAuthHTTPService struct {
	features map[string][]domain.Entitlement
	err      error
	calls    int
}

func (m *mockAuthHTTPService) GetUserFeatures(ctx context.Context, userUUID string) ([]domain.Entitlement, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.features[userUUID], nil
}

type fixedTimer struct {
	now time.Time
}

func (t fixedTimer) Now() time.Time {
	return t.now
}

func (t fixedTimer) UTCDateNDaysAgo(days int) time.Time {
	return t.now.AddDate(0, 0, -days)
}

type mockNotifier struct {
	mu       sync.Mutex
	ctx      context.Context
	userUUID string
	received []*domain.RevisionSimpleResponse
	err      error
}

func (m *mockNotifier) NotifyRevisionCreated(ctx context.Context, userUUID string, revision *domain.RevisionSimpleResponse) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ctx = ctx
	m.userUUID = userUUID
	m.received = append(m.received, revision)
	return m.err
}
