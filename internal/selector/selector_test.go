package selector

import (
	"errors"
	"fmt"
	"regexp"
	"testing"

	"github.com/google/go-cmp/cmp"

	"picbot/internal/history"
	"picbot/internal/model"
)

var errBroken = errors.New("unusable")

func entry(id, title string) model.Entry {
	return model.Entry{Candidate: model.Candidate{
		Title:    title,
		MediaURL: "https://cdn.example.com/" + id + ".jpg",
		PostID:   id,
	}}
}

func badEntry() model.Entry {
	return model.Entry{Err: errBroken}
}

func mustRules(t *testing.T, patterns map[string]string) map[string]*regexp.Regexp {
	t.Helper()
	rules := make(map[string]*regexp.Regexp, len(patterns))
	for feed, p := range patterns {
		rules[feed] = regexp.MustCompile(`\A(?:` + p + `)`)
	}
	return rules
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name      string
		entries   []model.Entry
		feedID    string
		patterns  map[string]string
		snap      history.Snapshot
		maxScan   int
		wantID    string
		wantFound bool
	}{
		{
			name:      "first candidate wins with empty history",
			entries:   []model.Entry{entry("a", "x"), entry("b", "y")},
			feedID:    "foo",
			snap:      history.Snapshot{},
			maxScan:   10,
			wantID:    "a",
			wantFound: true,
		},
		{
			name:      "filter mismatch skips to the next candidate",
			entries:   []model.Entry{entry("1", "dog on a couch"), entry("2", "cat pic")},
			feedID:    "r",
			patterns:  map[string]string{"r": "cat"},
			snap:      history.Snapshot{},
			maxScan:   10,
			wantID:    "2",
			wantFound: true,
		},
		{
			name: "filter anchored at the title start",
			entries: []model.Entry{
				entry("1", "my cat sleeping"),
				entry("2", "cat pic"),
			},
			feedID:    "r",
			patterns:  map[string]string{"r": "cat"},
			snap:      history.Snapshot{},
			maxScan:   10,
			wantID:    "2",
			wantFound: true,
		},
		{
			name:      "filter for another feed does not apply",
			entries:   []model.Entry{entry("1", "dog on a couch")},
			feedID:    "foo",
			patterns:  map[string]string{"r": "cat"},
			snap:      history.Snapshot{},
			maxScan:   10,
			wantID:    "1",
			wantFound: true,
		},
		{
			name:      "already delivered candidate skipped",
			entries:   []model.Entry{entry("a", "x"), entry("b", "y")},
			feedID:    "foo",
			snap:      history.Snapshot{"foo": {"a"}},
			maxScan:   10,
			wantID:    "b",
			wantFound: true,
		},
		{
			name:      "unusable entry skipped but still counted",
			entries:   []model.Entry{badEntry(), entry("a", "x")},
			feedID:    "foo",
			snap:      history.Snapshot{},
			maxScan:   10,
			wantID:    "a",
			wantFound: true,
		},
		{
			name:      "unusable entry consumes budget",
			entries:   []model.Entry{badEntry(), entry("a", "x")},
			feedID:    "foo",
			snap:      history.Snapshot{},
			maxScan:   1,
			wantFound: false,
		},
		{
			name:      "empty candidate list",
			entries:   nil,
			feedID:    "foo",
			snap:      history.Snapshot{},
			maxScan:   10,
			wantFound: false,
		},
		{
			name:      "zero scan budget",
			entries:   []model.Entry{entry("a", "x")},
			feedID:    "foo",
			snap:      history.Snapshot{},
			maxScan:   0,
			wantFound: false,
		},
		{
			name:      "everything already delivered",
			entries:   []model.Entry{entry("a", "x"), entry("b", "y")},
			feedID:    "foo",
			snap:      history.Snapshot{"foo": {"a", "b"}},
			maxScan:   10,
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := mustRules(t, tt.patterns)
			got, found := Select(tt.entries, tt.feedID, rules, tt.snap, tt.maxScan)

			if found != tt.wantFound {
				t.Fatalf("found = %v, want %v (got %+v)", found, tt.wantFound, got)
			}
			if !found {
				return
			}
			if got.PostID != tt.wantID {
				t.Errorf("PostID = %q, want %q", got.PostID, tt.wantID)
			}
			if got.FeedID != tt.feedID {
				t.Errorf("FeedID = %q, want %q", got.FeedID, tt.feedID)
			}
		})
	}
}

// The new candidate sits just past the scan budget: ten already delivered
// posts exhaust the budget before the eleventh is reached.
func TestSelectBudgetExhaustedBeforeNewCandidate(t *testing.T) {
	snap := history.Snapshot{"r": {}}
	var entries []model.Entry
	for i := 1; i <= 10; i++ {
		id := fmt.Sprintf("%d", i)
		entries = append(entries, entry(id, "post "+id))
		snap["r"] = append(snap["r"], id)
	}
	entries = append(entries, entry("11", "post 11"))

	if _, found := Select(entries, "r", nil, snap, 10); found {
		t.Error("expected no selection within the scan budget")
	}

	// A budget large enough to reach it finds the new post.
	got, found := Select(entries, "r", nil, snap, 11)
	if !found || got.PostID != "11" {
		t.Errorf("got (%+v, %v), want post 11", got, found)
	}
}

func TestSelectIsPure(t *testing.T) {
	entries := []model.Entry{badEntry(), entry("a", "x"), entry("b", "y")}
	snap := history.Snapshot{"foo": {"a"}}
	before := history.Clone(snap)

	first, foundFirst := Select(entries, "foo", nil, snap, 10)
	second, foundSecond := Select(entries, "foo", nil, snap, 10)

	if foundFirst != foundSecond {
		t.Fatalf("found differs between calls: %v vs %v", foundFirst, foundSecond)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("results differ between identical calls (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, snap); diff != "" {
		t.Errorf("snapshot mutated (-want +got):\n%s", diff)
	}
}

// A candidate in history is never selected, whatever the budget.
func TestSelectRejectionIdempotent(t *testing.T) {
	entries := []model.Entry{entry("a", "x"), entry("b", "y"), entry("c", "z")}
	snap := history.Snapshot{"foo": {"b"}}

	for budget := 2; budget <= 5; budget++ {
		got, found := Select(entries, "foo", nil, snap, budget)
		if found && got.PostID == "b" {
			t.Errorf("budget %d: delivered post selected again", budget)
		}
	}
}
