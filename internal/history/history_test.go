package history

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestContains(t *testing.T) {
	snap := Snapshot{
		"pics": {"a", "b", "c"},
		"maps": {},
	}

	tests := []struct {
		name   string
		feed   string
		postID string
		want   bool
	}{
		{name: "present", feed: "pics", postID: "b", want: true},
		{name: "absent id", feed: "pics", postID: "z", want: false},
		{name: "empty feed", feed: "maps", postID: "a", want: false},
		{name: "unknown feed", feed: "gifs", postID: "a", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Contains(snap, tt.feed, tt.postID); got != tt.want {
				t.Errorf("Contains(%q, %q) = %v, want %v", tt.feed, tt.postID, got, tt.want)
			}
		})
	}
}

func TestRecord(t *testing.T) {
	tests := []struct {
		name   string
		snap   Snapshot
		feed   string
		postID string
		limit  int
		want   []string
	}{
		{
			name:   "new feed entry created",
			snap:   Snapshot{},
			feed:   "pics",
			postID: "a",
			limit:  10,
			want:   []string{"a"},
		},
		{
			name:   "appended in order",
			snap:   Snapshot{"pics": {"a", "b"}},
			feed:   "pics",
			postID: "c",
			limit:  10,
			want:   []string{"a", "b", "c"},
		},
		{
			name:   "oldest dropped at the cap",
			snap:   Snapshot{"pics": {"1", "2", "3"}},
			feed:   "pics",
			postID: "4",
			limit:  3,
			want:   []string{"2", "3", "4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Record(tt.snap, tt.feed, tt.postID, tt.limit)
			if diff := cmp.Diff(tt.want, got[tt.feed]); diff != "" {
				t.Errorf("Record mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecordCapInvariant(t *testing.T) {
	const limit = 10

	snap := Snapshot{}
	for i := 0; i < limit; i++ {
		snap = Record(snap, "pics", fmt.Sprintf("id-%d", i), limit)
	}
	if got := len(snap["pics"]); got != limit {
		t.Fatalf("length = %d, want %d", got, limit)
	}

	snap = Record(snap, "pics", "id-new", limit)
	if got := len(snap["pics"]); got != limit {
		t.Fatalf("length after overflow = %d, want %d", got, limit)
	}

	want := []string{
		"id-1", "id-2", "id-3", "id-4", "id-5",
		"id-6", "id-7", "id-8", "id-9", "id-new",
	}
	if diff := cmp.Diff(want, snap["pics"]); diff != "" {
		t.Errorf("retained ids mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordDoesNotMutateInput(t *testing.T) {
	snap := Snapshot{"pics": {"a", "b"}, "maps": {"x"}}
	before := Clone(snap)

	_ = Record(snap, "pics", "c", 2)
	_ = Record(snap, "gifs", "g", 2)

	if diff := cmp.Diff(before, snap); diff != "" {
		t.Errorf("input snapshot mutated (-want +got):\n%s", diff)
	}
}

func TestClone(t *testing.T) {
	snap := Snapshot{"pics": {"a", "b"}}
	cp := Clone(snap)

	if diff := cmp.Diff(snap, cp); diff != "" {
		t.Fatalf("clone differs (-want +got):\n%s", diff)
	}

	cp["pics"][0] = "mutated"
	cp["maps"] = []string{"x"}

	if snap["pics"][0] != "a" {
		t.Error("mutating clone leaked into original slice")
	}
	if _, ok := snap["maps"]; ok {
		t.Error("mutating clone leaked into original map")
	}
}
