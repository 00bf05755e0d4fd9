// Package lock provides the keyed critical sections used by the allocation
// writers. Keys name a hotel or a registration; a writer takes every key it
// touches before reading state and releases them after commit.
package lock

import (
	"context"
	"slices"
	"sync"
)

const (
	hotelPrefix        = "hotel:"
	registrationPrefix = "registration:"
)

func HotelKey(hotelID string) string {
	return hotelPrefix + hotelID
}

func RegistrationKey(registrationID string) string {
	return registrationPrefix + registrationID
}

type Unlock func()

// Locker acquires a set of keys as one unit. Implementations must take keys
// in a stable order so two writers sharing keys cannot deadlock.
type Locker interface {
	Acquire(ctx context.Context, keys ...string) (Unlock, error)
}

// Normalize sorts and de-duplicates keys. Every Locker implementation
// acquires in this order.
func Normalize(keys []string) []string {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}

type entry struct {
	ch   chan struct{}
	refs int
}

// KeyedLocker is an in-process Locker. Each key is a one-slot channel so a
// waiting writer can give up when its context ends.
type KeyedLocker struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{entries: make(map[string]*entry)}
}

func (l *KeyedLocker) Acquire(ctx context.Context, keys ...string) (Unlock, error) {
	keys = Normalize(keys)
	held := make([]string, 0, len(keys))

	for _, key := range keys {
		e := l.ref(key)
		select {
		case e.ch <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			l.unref(key)
			l.release(held)
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(held) })
	}, nil
}

func (l *KeyedLocker) ref(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *KeyedLocker) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e := l.entries[key]
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *KeyedLocker) release(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.mu.Lock()
		e := l.entries[keys[i]]
		l.mu.Unlock()
		<-e.ch
		l.unref(keys[i])
	}
}

// Held reports how many keys currently have a holder or a waiter.
func (l *KeyedLocker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
