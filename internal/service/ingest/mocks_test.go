package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/uzdatahub/datahub-backend/internal/domain"
)

var _ entryRepo = &entryRepoMock{}

type entryRepoMock struct {
	CreateFunc         func(ctx context.Context, e domain.DataEntry) (*domain.DataEntry, error)
	InsertManyFunc     func(ctx context.Context, entries []domain.DataEntry) (int, error)
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.DataEntry, error)
	UpdateContentFunc  func(ctx context.Context, id, creatorID uuid.UUID, content, metadata domain.Payload, hashKey string) (*domain.DataEntry, error)
	DeleteFunc         func(ctx context.Context, id, creatorID uuid.UUID) error
	DeleteManyFunc     func(ctx context.Context, ids []uuid.UUID, creatorID uuid.UUID) (int, []uuid.UUID, error)

	calls struct {
		Create     []domain.DataEntry
		InsertMany [][]domain.DataEntry
	}
	lock sync.RWMutex
}

func (mock *entryRepoMock) Create(ctx context.Context, e domain.DataEntry) (*domain.DataEntry, error) {
	if mock.CreateFunc == nil {
		panic("entryRepoMock.CreateFunc: method is nil but entryRepo.Create was just called")
	}
	mock.lock.Lock()
	mock.calls.Create = append(mock.calls.Create, e)
	mock.lock.Unlock()
	return mock.CreateFunc(ctx, e)
}

func (mock *entryRepoMock) CreateCalls() []domain.DataEntry {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Create
}

func (mock *entryRepoMock) InsertMany(ctx context.Context, entries []domain.DataEntry) (int, error) {
	if mock.InsertManyFunc == nil {
		panic("entryRepoMock.InsertManyFunc: method is nil but entryRepo.InsertMany was just called")
	}
	mock.lock.Lock()
	mock.calls.InsertMany = append(mock.calls.InsertMany, entries)
	mock.lock.Unlock()
	return mock.InsertManyFunc(ctx, entries)
}

func (mock *entryRepoMock) InsertManyCalls() [][]domain.DataEntry {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.InsertMany
}

func (mock *entryRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.DataEntry, error) {
	if mock.GetByIDFunc == nil {
		panic("entryRepoMock.GetByIDFunc: method is nil but entryRepo.GetByID was just called")
	}
	return mock.GetByIDFunc(ctx, id)
}

func (mock *entryRepoMock) UpdateContent(ctx context.Context, id, creatorID uuid.UUID, content, metadata domain.Payload, hashKey string) (*domain.DataEntry, error) {
	if mock.UpdateContentFunc == nil {
		panic("entryRepoMock.UpdateContentFunc: method is nil but entryRepo.UpdateContent was just called")
	}
	return mock.UpdateContentFunc(ctx, id, creatorID, content, metadata, hashKey)
}

func (mock *entryRepoMock) Delete(ctx context.Context, id, creatorID uuid.UUID) error {
	if mock.DeleteFunc == nil {
		panic("entryRepoMock.DeleteFunc: method is nil but entryRepo.Delete was just called")
	}
	return mock.DeleteFunc(ctx, id, creatorID)
}

func (mock *entryRepoMock) DeleteMany(ctx context.Context, ids []uuid.UUID, creatorID uuid.UUID) (int, []uuid.UUID, error) {
	if mock.DeleteManyFunc == nil {
		panic("entryRepoMock.DeleteManyFunc: method is nil but entryRepo.DeleteMany was just called")
	}
	return mock.DeleteManyFunc(ctx, ids, creatorID)
}

var _ datasetRepo = &datasetRepoMock{}

type datasetRepoMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Dataset, error)
}

func (mock *datasetRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Dataset, error) {
	if mock.GetByIDFunc == nil {
		panic("datasetRepoMock.GetByIDFunc: method is nil but datasetRepo.GetByID was just called")
	}
	return mock.GetByIDFunc(ctx, id)
}

var _ contributorRepo = &contributorRepoMock{}

type contributorRepoMock struct {
	RecordFunc func(ctx context.Context, datasetID, userID uuid.UUID, count int) (*domain.DatasetContributor, error)

	calls struct {
		Record []struct {
			DatasetID uuid.UUID
			UserID    uuid.UUID
			Count     int
		}
	}
	lock sync.RWMutex
}

func (mock *contributorRepoMock) Record(ctx context.Context, datasetID, userID uuid.UUID, count int) (*domain.DatasetContributor, error) {
	if mock.RecordFunc == nil {
		panic("contributorRepoMock.RecordFunc: method is nil but contributorRepo.Record was just called")
	}
	mock.lock.Lock()
	mock.calls.Record = append(mock.calls.Record, struct {
		DatasetID uuid.UUID
		UserID    uuid.UUID
		Count     int
	}{datasetID, userID, count})
	mock.lock.Unlock()
	return mock.RecordFunc(ctx, datasetID, userID, count)
}

func (mock *contributorRepoMock) RecordCalls() []struct {
	DatasetID uuid.UUID
	UserID    uuid.UUID
	Count     int
} {
	mock.lock.RLock()
	defer mock.lock.RUnlock()
	return mock.calls.Record
}

var _ cache = &cacheMock{}

// cacheMock doubles as a tiny in-memory cache when its funcs are nil,
// which covers the common gate-behavior tests without boilerplate.
type cacheMock struct {
	GetFunc           func(ctx context.Context, key string) ([]byte, error)
	SetTTLFunc        func(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePatternFunc func(ctx context.Context, pattern string) error

	mu       sync.Mutex
	store    map[string][]byte
	patterns []string
}

func (mock *cacheMock) Get(ctx context.Context, key string) ([]byte, error) {
	if mock.GetFunc != nil {
		return mock.GetFunc(ctx, key)
	}
	mock.mu.Lock()
	defer mock.mu.Unlock()
	if val, ok := mock.store[key]; ok {
		return val, nil
	}
	return nil, domain.ErrNotFound
}

func (mock *cacheMock) SetTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if mock.SetTTLFunc != nil {
		return mock.SetTTLFunc(ctx, key, value, ttl)
	}
	mock.mu.Lock()
	defer mock.mu.Unlock()
	if mock.store == nil {
		mock.store = make(map[string][]byte)
	}
	mock.store[key] = value
	return nil
}

func (mock *cacheMock) DeletePattern(ctx context.Context, pattern string) error {
	if mock.DeletePatternFunc != nil {
		return mock.DeletePatternFunc(ctx, pattern)
	}
	mock.mu.Lock()
	defer mock.mu.Unlock()
	mock.patterns = append(mock.patterns, pattern)
	return nil
}

func (mock *cacheMock) DeletePatternCalls() []string {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.patterns
}

var _ taskQueue = &taskQueueMock{}

type taskQueueMock struct {
	EnqueueNotifyFunc func(ctx context.Context, kind string, payload map[string]any) error

	mu    sync.Mutex
	kinds []string
}

func (mock *taskQueueMock) EnqueueNotify(ctx context.Context, kind string, payload map[string]any) error {
	mock.mu.Lock()
	mock.kinds = append(mock.kinds, kind)
	mock.mu.Unlock()
	if mock.EnqueueNotifyFunc != nil {
		return mock.EnqueueNotifyFunc(ctx, kind, payload)
	}
	return nil
}

func (mock *taskQueueMock) EnqueueNotifyCalls() []string {
	mock.mu.Lock()
	defer mock.mu.Unlock()
	return mock.kinds
}
