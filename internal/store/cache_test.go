package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/roach88/symm/internal/rewrite"
)

func TestSaveLookup_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	want := createTestResult("src/lib.rs")

	if err := s.Save(ctx, "k1", want); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, ok, err := s.Lookup(ctx, "k1")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if !ok {
		t.Fatal("Lookup() missed a saved entry")
	}
	if !got.Cached {
		t.Error("cached result not marked Cached")
	}
	if got.Path != want.Path || got.Sites != want.Sites {
		t.Errorf("got path=%q sites=%d, want path=%q sites=%d", got.Path, got.Sites, want.Path, want.Sites)
	}
	if string(got.Output) != string(want.Output) {
		t.Errorf("output = %q, want %q", got.Output, want.Output)
	}
	if !reflect.DeepEqual(got.Diagnostics, want.Diagnostics) {
		t.Errorf("diagnostics = %+v, want %+v", got.Diagnostics, want.Diagnostics)
	}
}

func TestLookup_Miss(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.Lookup(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if ok {
		t.Error("Lookup() hit on an empty cache")
	}
}

func TestSave_NoDiagnostics(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	res := &rewrite.Result{Path: "plain.rs", Output: []byte("fn main() {}\n")}
	if err := s.Save(ctx, "plain", res); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	got, ok, err := s.Lookup(ctx, "plain")
	if err != nil || !ok {
		t.Fatalf("Lookup() = %v, %v", ok, err)
	}
	if got.Diagnostics != nil {
		t.Errorf("diagnostics = %+v, want nil", got.Diagnostics)
	}
	if got.Changed() {
		t.Error("result without sites reported as changed")
	}
}

func TestSave_Overwrites(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, "k", createTestResult("a.rs")); err != nil {
		t.Fatal(err)
	}
	updated := &rewrite.Result{Path: "a.rs", Output: []byte("new"), Sites: 2}
	if err := s.Save(ctx, "k", updated); err != nil {
		t.Fatal(err)
	}

	got, _, err := s.Lookup(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Output) != "new" || got.Sites != 2 {
		t.Errorf("entry not overwritten: %+v", got)
	}
}

func TestSave_SkipsCachedResults(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	res := createTestResult("a.rs")
	res.Cached = true
	if err := s.Save(ctx, "k", res); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Lookup(ctx, "k"); ok {
		t.Error("replayed result was written back")
	}
}

func TestLookup_IncompatibleVersion(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	s.version = "0.2.9"
	if err := s.Save(ctx, "old", createTestResult("a.rs")); err != nil {
		t.Fatal(err)
	}
	s.version = "0.3.4"
	if err := s.Save(ctx, "patch", createTestResult("b.rs")); err != nil {
		t.Fatal(err)
	}

	s.version = "0.3.0"
	if _, ok, _ := s.Lookup(ctx, "old"); ok {
		t.Error("entry from 0.2.9 reused by 0.3.0")
	}
	if _, ok, _ := s.Lookup(ctx, "patch"); !ok {
		t.Error("entry from 0.3.4 not reused by 0.3.0")
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 2 || st.Stale != 1 {
		t.Errorf("stats entries=%d stale=%d, want 2 and 1", st.Entries, st.Stale)
	}

	removed, err := s.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 {
		t.Errorf("Prune() removed %d, want 1", removed)
	}
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		recorded, current string
		want              bool
	}{
		{"0.3.0", "0.3.0", true},
		{"0.3.7", "0.3.1", true},
		{"0.3.0", "0.4.0", false},
		{"1.2.0", "2.2.0", false},
		{"garbage", "0.3.0", false},
		{"0.3.0", "garbage", false},
	}
	for _, tt := range tests {
		if got := Compatible(tt.recorded, tt.current); got != tt.want {
			t.Errorf("Compatible(%q, %q) = %v, want %v", tt.recorded, tt.current, got, tt.want)
		}
	}
}

func TestClear(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := s.Save(ctx, k, createTestResult(k+".rs")); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.BeginRun(ctx, "expand"); err != nil {
		t.Fatal(err)
	}

	n, err := s.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() removed %d, want 3", n)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Entries != 0 || st.Runs != 1 {
		t.Errorf("after Clear: entries=%d runs=%d, want 0 and 1", st.Entries, st.Runs)
	}
}
