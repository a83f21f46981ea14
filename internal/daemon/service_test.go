package daemon

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clubsmell/fragdash/internal/testutil"
)

func newTestService(t *testing.T, path string) *Service {
	t.Helper()
	return New(Config{
		Workbook:     path,
		Interval:     10 * time.Second,
		EventsBuffer: 10,
	})
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Fragrances: 4, Tracked: 2, Periods: 2, Wears: 32}
	curr := Snapshot{Fragrances: 5, Tracked: 3, Periods: 3, Wears: 36.5}

	delta := diffSnapshots(prev, curr)
	if delta.Fragrances != 1 {
		t.Fatalf("Fragrances delta = %d, want 1", delta.Fragrances)
	}
	if delta.Tracked != 1 {
		t.Fatalf("Tracked delta = %d, want 1", delta.Tracked)
	}
	if delta.Periods != 1 {
		t.Fatalf("Periods delta = %d, want 1", delta.Periods)
	}
	if math.Abs(delta.Wears-4.5) > 1e-9 {
		t.Fatalf("Wears delta = %.2f, want 4.50", delta.Wears)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should give a zero delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := New(Config{
		Workbook:     "collection.xlsx",
		Interval:     10 * time.Second,
		EventsBuffer: 2,
	})

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	events := s.Events()
	if len(events) != 2 {
		t.Fatalf("events len = %d, want 2", len(events))
	}
	if events[0].ID != 2 || events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", events[0].ID, events[1].ID)
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{Workbook: "x.xlsx", Interval: time.Second})
	if s.cfg.Interval != 10*time.Second {
		t.Errorf("Interval = %v, want 10s", s.cfg.Interval)
	}
	if s.cfg.EventsBuffer != 200 {
		t.Errorf("EventsBuffer = %d, want 200", s.cfg.EventsBuffer)
	}
	if _, err := s.Dataset(); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Dataset before load err = %v, want ErrNotLoaded", err)
	}
}

func TestPollOnce_LoadsAndSkipsUnchanged(t *testing.T) {
	path := testutil.WriteWorkbook(t, testutil.Collection()...)
	s := newTestService(t, path)

	s.PollOnce()
	ds, err := s.Dataset()
	if err != nil {
		t.Fatalf("Dataset: %v", err)
	}
	if len(ds.Catalog) != 4 || len(ds.Periods) != 2 {
		t.Fatalf("dataset = %d fragrances / %d periods, want 4 / 2", len(ds.Catalog), len(ds.Periods))
	}

	s.PollOnce()
	st := s.Status()
	if st.PollCount != 2 || st.ReloadCount != 1 {
		t.Fatalf("poll/reload = %d/%d, want 2/1", st.PollCount, st.ReloadCount)
	}
	if st.Summary.Wears != 32 || st.Summary.Tracked != 2 {
		t.Fatalf("summary = %+v, want 32 wears over 2 fragrances", st.Summary)
	}

	events := s.Events()
	if len(events) != 1 || events[0].Type != "snapshot" {
		t.Fatalf("events = %+v, want one snapshot", events)
	}
}

func TestPollOnce_ReloadsChangedWorkbook(t *testing.T) {
	path := testutil.WriteWorkbook(t, testutil.Collection()...)
	s := newTestService(t, path)
	s.PollOnce()
	first, _ := s.Dataset()

	ch, unsubscribe := s.Subscribe(4)
	defer unsubscribe()

	sheets := append(testutil.Collection(), testutil.Sheet{Name: "Wears for 2024", Rows: [][]any{
		testutil.WearsHeader,
		{"Dune", 4, 50, 0},
	}})
	testutil.SaveWorkbook(t, path, sheets...)
	// Force a visible change even on filesystems with coarse mtimes.
	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	s.PollOnce()
	second, err := s.Dataset()
	if err != nil {
		t.Fatal(err)
	}
	if second == first {
		t.Fatal("reload should swap in a new dataset")
	}
	if len(first.Periods) != 2 {
		t.Fatalf("previous dataset was modified: %v", first.Periods)
	}

	select {
	case ev := <-ch:
		if ev.Type != "wears_delta" || ev.Delta.Wears != 4 || ev.Delta.Tracked != 1 || ev.Delta.Periods != 1 {
			t.Fatalf("event = %+v, want wears_delta of 4 wears", ev)
		}
	default:
		t.Fatal("subscriber did not receive the reload event")
	}
}

func TestPollOnce_MissingFileKeepsDataset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collection.xlsx")
	testutil.SaveWorkbook(t, path, testutil.Collection()...)

	s := newTestService(t, path)
	s.PollOnce()
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	s.PollOnce()
	s.PollOnce()

	if _, err := s.Dataset(); err != nil {
		t.Fatalf("dataset should survive a failed reload: %v", err)
	}
	st := s.Status()
	if st.LastError == "" {
		t.Fatal("LastError should report the missing workbook")
	}

	var errorEvents int
	for _, ev := range s.Events() {
		if ev.Type == "reload_error" {
			errorEvents++
		}
	}
	if errorEvents != 1 {
		t.Fatalf("reload_error events = %d, want 1 for a repeated failure", errorEvents)
	}
}
