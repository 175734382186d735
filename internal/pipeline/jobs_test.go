package pipeline

import (
	"testing"
	"time"

	"github.com/dgallion1/vigcrack/internal/vigenere"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	// SHA-256 of empty input is well-known.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestDedupKey_DependsOnModeAndOptions(t *testing.T) {
	data := []byte("Lxfopv ef rnhr")
	base := DedupKey(data, ModeWhole, JobOptions{})
	if base != DedupKey(data, ModeWhole, JobOptions{}) {
		t.Error("expected stable dedup key")
	}
	if base == DedupKey(data, ModeSections, JobOptions{}) {
		t.Error("expected mode to change dedup key")
	}
	if base == DedupKey(data, ModeWhole, JobOptions{Key: "LEMON"}) {
		t.Error("expected key to change dedup key")
	}
	if DedupKey(data, ModeWhole, JobOptions{Key: "lemon"}) != DedupKey(data, ModeWhole, JobOptions{Key: "LEMON"}) {
		t.Error("expected key case to be ignored")
	}
}

func TestDedupKey_KeyDoesNotBleedIntoData(t *testing.T) {
	a := DedupKey([]byte("C"), ModeWhole, JobOptions{Key: "A|B"})
	b := DedupKey([]byte("B|C"), ModeWhole, JobOptions{Key: "A"})
	if a == b {
		t.Error("expected distinct dedup keys when the key boundary moves")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeWhole, false},
		{"whole", ModeWhole, false},
		{" Sections ", ModeSections, false},
		{"pages", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q): unexpected error state: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJobOptions_Apply(t *testing.T) {
	base := vigenere.Options{MinRepeat: 4, TopShifts: 5, Workers: 2}
	got := JobOptions{MinRepeat: 3, Key: "LEMON"}.Apply(base)
	if got.MinRepeat != 3 || got.TopShifts != 5 || got.Key != "LEMON" || got.Workers != 2 {
		t.Errorf("unexpected options: %+v", got)
	}
	if got := (JobOptions{}).Apply(base); got.MinRepeat != 4 || got.KeyLength != 0 {
		t.Errorf("expected zero overrides to keep base, got %+v", got)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusParsing, "parsing document"},
		{StatusAnalyzing, "analyzing sections"},
		{StatusStoring, "storing results"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
	if !job.Status.Terminal() {
		t.Error("expected completed to be terminal")
	}
}

func TestJobStatus_Terminal(t *testing.T) {
	for _, s := range []JobStatus{StatusQueued, StatusParsing, StatusAnalyzing, StatusStoring} {
		if s.Terminal() {
			t.Errorf("%q should not be terminal", s)
		}
	}
	for _, s := range []JobStatus{StatusCompleted, StatusFailed, StatusPartial, StatusReused} {
		if !s.Terminal() {
			t.Errorf("%q should be terminal", s)
		}
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("section 3 failed")
	job.AddError("section 7 failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "section 3 failed" {
		t.Errorf("expected first error %q, got %q", "section 3 failed", snap.Progress.Errors[0])
	}
}

func TestJob_IncrSectionsAnalyzed(t *testing.T) {
	job := &Job{ID: "incr-test", UpdatedAt: time.Now()}
	job.SetTotalSections(3)
	job.IncrSectionsAnalyzed(false)
	job.IncrSectionsAnalyzed(true)
	job.IncrSectionsAnalyzed(false)

	snap := job.Snapshot()
	if snap.Progress.TotalSections != 3 {
		t.Errorf("expected 3 total sections, got %d", snap.Progress.TotalSections)
	}
	if snap.Progress.SectionsAnalyzed != 3 {
		t.Errorf("expected 3 sections analyzed, got %d", snap.Progress.SectionsAnalyzed)
	}
	if snap.Progress.SectionsFailed != 1 {
		t.Errorf("expected 1 failed section, got %d", snap.Progress.SectionsFailed)
	}
}

func TestJob_SetResultDropsFileData(t *testing.T) {
	job := NewJob("a.txt", "", ModeWhole, JobOptions{}, []byte("abc"))
	if job.Result() != nil {
		t.Fatal("expected no result before processing")
	}
	job.SetResult(&JobResult{Filename: "a.txt"})
	if job.Result() == nil || job.Result().Filename != "a.txt" {
		t.Errorf("unexpected result: %+v", job.Result())
	}
	if job.FileData() != nil {
		t.Error("expected file data to be released")
	}
}

func TestJob_FileData(t *testing.T) {
	job := &Job{ID: "data-test"}
	data := []byte("file content here")
	job.SetFileData(data)
	got := job.FileData()
	if string(got) != string(data) {
		t.Errorf("expected file data %q, got %q", data, got)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_FindByHash(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("a.txt", "", ModeWhole, JobOptions{}, []byte("abc"))
	store.Put(job)

	if got := store.FindByHash(job.ContentHash); got != job {
		t.Fatalf("expected job by hash, got %v", got)
	}
	if store.FindByHash("missing") != nil {
		t.Error("expected nil for unknown hash")
	}

	job.SetStatus(StatusFailed, "parsing")
	if store.FindByHash(job.ContentHash) != nil {
		t.Error("expected failed job to be ignored")
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 tracked job, got %d", store.Len())
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
