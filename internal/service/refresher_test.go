package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ilinovom/fido5011-bot/internal/model"
	"github.com/rs/zerolog"
)

type fakeFetcher struct {
	mu      sync.Mutex
	records map[int64][]model.DirectoryRecord
	err     error
	calls   int
}

func (f *fakeFetcher) Fetch(ctx context.Context, userID int64) ([]model.DirectoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records[userID], nil
}

func newTestRefresher(f Fetcher, repo *memRepo, queue int) *Refresher {
	return NewRefresher(f, repo, RefresherConfig{
		StripPrefix: "2:5011/",
		Timeout:     time.Second,
		RPS:         100,
		Workers:     2,
		QueueSize:   queue,
	}, zerolog.Nop())
}

func TestRefresher_Refresh(t *testing.T) {
	repo := newMemRepo()
	repo.data[42] = &model.UserState{UserID: 42, LastSeen: 1}
	f := &fakeFetcher{records: map[int64][]model.DirectoryRecord{42: recs("Alice", "2:5011/102.1", "2:5011/102")}}
	r := newTestRefresher(f, repo, 8)

	if err := r.Refresh(context.Background(), 42); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	u, _ := repo.Get(context.Background(), 42)
	if u.Addr == nil || *u.Addr != "Alice, 102" {
		t.Fatalf("unexpected addr: %v", u.Addr)
	}
}

func TestRefresher_FailuresKeepAddress(t *testing.T) {
	cases := map[string]*fakeFetcher{
		"fetch error": {err: errors.New("timeout")},
		"empty list":  {records: map[int64][]model.DirectoryRecord{}},
	}
	for name, f := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newMemRepo()
			repo.data[42] = &model.UserState{UserID: 42, Addr: strPtr("Alice, 102")}
			r := newTestRefresher(f, repo, 8)
			if err := r.Refresh(context.Background(), 42); err == nil {
				t.Fatalf("expected error")
			}
			u, _ := repo.Get(context.Background(), 42)
			if *u.Addr != "Alice, 102" {
				t.Fatalf("addr changed to %q", *u.Addr)
			}
		})
	}
}

func TestRefresher_CancelledBeforeWrite(t *testing.T) {
	repo := newMemRepo()
	repo.data[42] = &model.UserState{UserID: 42}
	f := &fakeFetcher{records: map[int64][]model.DirectoryRecord{42: recs("Alice", "2:5011/102")}}
	r := newTestRefresher(f, repo, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Refresh(ctx, 42); err == nil {
		t.Fatalf("expected context error")
	}
	u, _ := repo.Get(context.Background(), 42)
	if u.Addr != nil {
		t.Fatalf("address written after cancel: %q", *u.Addr)
	}
}

func TestRefresher_ScheduleCoalescesAndDrops(t *testing.T) {
	r := newTestRefresher(&fakeFetcher{}, newMemRepo(), 2)
	if !r.Schedule(1) || !r.Schedule(1) {
		t.Fatalf("schedule failed")
	}
	if len(r.queue) != 1 {
		t.Fatalf("duplicate queued: %d", len(r.queue))
	}
	if !r.Schedule(2) {
		t.Fatalf("schedule failed")
	}
	if r.Schedule(3) {
		t.Fatalf("expected drop on full queue")
	}
}

func TestRefresher_RunProcessesQueue(t *testing.T) {
	repo := newMemRepo()
	f := &fakeFetcher{records: map[int64][]model.DirectoryRecord{}}
	for _, id := range []int64{1, 2, 3} {
		repo.data[id] = &model.UserState{UserID: id}
		f.records[id] = recs("User", "2:5011/1")
	}
	r := newTestRefresher(f, repo, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	n, err := r.ResyncAll(ctx)
	if err != nil || n != 3 {
		t.Fatalf("resync = %d, %v", n, err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		all, _ := repo.List(context.Background())
		ok := true
		for _, u := range all {
			if u.Addr == nil {
				ok = false
			}
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("refresh jobs did not complete")
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-done
}
