package runlog_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/vvve011/duplicator/batch"
	"github.com/vvve011/duplicator/dbopen"
	"github.com/vvve011/duplicator/runlog"
)

func newStore(t *testing.T) *runlog.Store {
	t.Helper()
	db := dbopen.OpenMemory(t, dbopen.WithSchema(runlog.Schema))
	return runlog.NewStore(db, nil)
}

func sampleResult(masterPath string) *batch.BatchResult {
	return &batch.BatchResult{
		Success:     true,
		Processed:   2,
		Failed:      1,
		TotalCopies: 6,
		MasterPath:  masterPath,
		Results: []batch.ArchiveResult{
			{Success: true, ArchiveName: "a.zip", OriginalDomain: "example.com", OriginalName: "Example",
				Copies: []batch.CopyInfo{{Domain: "biocare.com"}, {Domain: "purezen.com"}, {Domain: "vitanova.com"}}},
			{Success: true, ArchiveName: "b.zip", OriginalDomain: "other.net",
				Copies: []batch.CopyInfo{{Domain: "x1.com"}, {Domain: "x2.com"}, {Domain: "x3.com"}}},
			{Success: false, ArchiveName: "broken.zip", Error: "extraction failed"},
		},
		Errors: []batch.BatchError{{Archive: "broken.zip", Reason: "extraction failed"}},
	}
}

func TestRecordAndGet(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	started := time.Now().Add(-time.Minute)
	finished := time.Now()
	id, err := store.Record(ctx, sampleResult(""), started, finished)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == "" {
		t.Fatal("Record: empty id")
	}

	run, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !run.Success {
		t.Error("run.Success: got false, want true")
	}
	if run.Processed != 2 || run.Failed != 1 || run.TotalCopies != 6 {
		t.Errorf("counters: got %d/%d/%d, want 2/1/6", run.Processed, run.Failed, run.TotalCopies)
	}
	if !run.StartedAt.Equal(started.UTC().Truncate(0)) && run.StartedAt.Unix() != started.Unix() {
		t.Errorf("StartedAt: got %v, want %v", run.StartedAt, started)
	}
}

func TestGet_NotFound(t *testing.T) {
	store := newStore(t)
	_, err := store.Get(context.Background(), "run_missing")
	if !errors.Is(err, runlog.ErrNotFound) {
		t.Fatalf("Get missing: got %v, want ErrNotFound", err)
	}
}

func TestRecord_HashesMasterBundle(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	master := filepath.Join(dir, "duplicates_test.zip")
	content := []byte("fake bundle content")
	if err := os.WriteFile(master, content, 0o644); err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(content)

	id, err := store.Record(ctx, sampleResult(master), time.Now(), time.Now())
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	run, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.MasterPath != master {
		t.Errorf("MasterPath: got %q, want %q", run.MasterPath, master)
	}
	if run.MasterSHA256 != hex.EncodeToString(sum[:]) {
		t.Errorf("MasterSHA256: got %q, want %q", run.MasterSHA256, hex.EncodeToString(sum[:]))
	}
}

func TestRecord_MissingBundleStillRecorded(t *testing.T) {
	store := newStore(t)
	res := sampleResult("/nonexistent/bundle.zip")

	id, err := store.Record(context.Background(), res, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("Record with missing bundle: %v", err)
	}
	run, err := store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.MasterSHA256 != "" {
		t.Errorf("MasterSHA256: got %q, want empty for unreadable bundle", run.MasterSHA256)
	}
}

func TestHistory_NewestFirst(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		started := base.Add(time.Duration(i) * time.Hour)
		id, err := store.Record(ctx, sampleResult(""), started, started.Add(time.Minute))
		if err != nil {
			t.Fatalf("Record %d: %v", i, err)
		}
		ids = append(ids, id)
	}

	runs, err := store.History(ctx, 10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("History: got %d runs, want 3", len(runs))
	}
	// Newest started_at first.
	if runs[0].ID != ids[2] || runs[2].ID != ids[0] {
		t.Errorf("History order: got %s..%s, want %s..%s", runs[0].ID, runs[2].ID, ids[2], ids[0])
	}
}

func TestHistory_Limit(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		started := time.Date(2026, 8, 1, 12, i, 0, 0, time.UTC)
		if _, err := store.Record(ctx, sampleResult(""), started, started); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := store.History(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("History limit: got %d, want 2", len(runs))
	}
}

func TestStats(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.Record(ctx, sampleResult(""), time.Now(), time.Now()); err != nil {
		t.Fatal(err)
	}
	failed := &batch.BatchResult{Failed: 1, Results: []batch.ArchiveResult{{ArchiveName: "x.zip", Error: "boom"}}}
	if _, err := store.Record(ctx, failed, time.Now(), time.Now()); err != nil {
		t.Fatal(err)
	}

	st, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.TotalRuns != 2 {
		t.Errorf("TotalRuns: got %d, want 2", st.TotalRuns)
	}
	if st.SuccessfulRuns != 1 {
		t.Errorf("SuccessfulRuns: got %d, want 1", st.SuccessfulRuns)
	}
	if st.TotalCopies != 6 {
		t.Errorf("TotalCopies: got %d, want 6", st.TotalCopies)
	}
	if st.TotalArchives != 4 {
		t.Errorf("TotalArchives: got %d, want 4", st.TotalArchives)
	}
	if st.LastRunAt.IsZero() {
		t.Error("LastRunAt: got zero time")
	}
}

func TestStats_Empty(t *testing.T) {
	store := newStore(t)
	st, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats on empty history: %v", err)
	}
	if st.TotalRuns != 0 || !st.LastRunAt.IsZero() {
		t.Errorf("empty stats: got %+v", st)
	}
}
