package service

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/omerorhan/rate-converter/internal/storage"
)

const testToday = "19.10.2026"

func nbuDoc(date string) []byte {
	return []byte(fmt.Sprintf(`[
{"r030":840,"txt":"Долар США","rate":37.5,"cc":"USD","exchangedate":"%[1]s"},
{"r030":978,"txt":"Євро","rate":40.5,"cc":"EUR","exchangedate":"%[1]s"},
{"r030":985,"txt":"Злотий","rate":9.3712,"cc":"PLN","exchangedate":"%[1]s"}
]`, date))
}

// MockFetcher records every network call.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// failingStore injects errors in front of a MemoryStore.
type failingStore struct {
	*storage.MemoryStore
	existsErr error
	readErr   error
	writeErr  error
}

func (f *failingStore) Exists(ctx context.Context) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.MemoryStore.Exists(ctx)
}

func (f *failingStore) Read(ctx context.Context) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.MemoryStore.Read(ctx)
}

func (f *failingStore) Write(ctx context.Context, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	return f.MemoryStore.Write(ctx, data)
}

// lockingStore is a MemoryStore that also implements storage.Locker.
type lockingStore struct {
	*storage.MemoryStore
	acquire bool
	lockErr error
	onBusy  func()
	locks   int
	unlocks int
	owner   string
}

func (l *lockingStore) Lock(ctx context.Context, owner string, ttl time.Duration) (bool, error) {
	l.locks++
	l.owner = owner
	if l.lockErr != nil {
		return false, l.lockErr
	}
	if !l.acquire && l.onBusy != nil {
		l.onBusy()
	}
	return l.acquire, nil
}

func (l *lockingStore) Unlock(ctx context.Context, owner string) error {
	l.unlocks++
	return nil
}

var _ storage.Locker = (*lockingStore)(nil)

// closeCountingStore records Close calls on an otherwise plain MemoryStore.
type closeCountingStore struct {
	*storage.MemoryStore
	closes int
}

func (c *closeCountingStore) Close() error {
	c.closes++
	return nil
}
