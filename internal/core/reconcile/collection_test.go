package reconcile

import "testing"

type item struct {
	ID   int
	Body string
}

func (i item) EntityID() int { return i.ID }

func ids(c *Collection[item]) []int {
	snap := c.Snapshot()
	out := make([]int, len(snap))
	for i, it := range snap {
		out[i] = it.ID
	}
	return out
}

func expectIDs(t *testing.T, c *Collection[item], want ...int) {
	t.Helper()
	got := ids(c)
	if len(got) != len(want) {
		t.Fatalf("expected ids %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected ids %v, got %v", want, got)
		}
	}
}

func TestCollection_UpsertPrependsNew(t *testing.T) {
	c := New[item](0)
	if !c.Upsert(item{ID: 1, Body: "a"}) {
		t.Fatalf("expected insert for new id")
	}
	if !c.Upsert(item{ID: 2, Body: "b"}) {
		t.Fatalf("expected insert for new id")
	}
	expectIDs(t, c, 2, 1)
}

func TestCollection_UpsertReplacesInPlace(t *testing.T) {
	c := New[item](0)
	c.Upsert(item{ID: 1, Body: "a"})
	c.Upsert(item{ID: 2, Body: "b"})
	c.Upsert(item{ID: 3, Body: "c"})

	if c.Upsert(item{ID: 2, Body: "b2"}) {
		t.Fatalf("expected replace, not insert")
	}
	expectIDs(t, c, 3, 2, 1)

	got, ok := c.Get(2)
	if !ok || got.Body != "b2" {
		t.Fatalf("expected updated body, got %+v (ok=%v)", got, ok)
	}
}

func TestCollection_UpsertReplayIdempotent(t *testing.T) {
	c := New[item](0)
	c.Upsert(item{ID: 1, Body: "a"})
	c.Upsert(item{ID: 2, Body: "b"})

	// Duplicate "changed" envelopes for the same id: the final state holds
	// exactly one entry, equal to the last payload, at the original position.
	for i := 0; i < 5; i++ {
		c.Upsert(item{ID: 2, Body: "final"})
	}
	expectIDs(t, c, 2, 1)
	got, _ := c.Get(2)
	if got.Body != "final" {
		t.Fatalf("expected last payload to win, got %q", got.Body)
	}
}

func TestCollection_CapEvictsTailOnly(t *testing.T) {
	c := New[item](3)
	for id := 1; id <= 3; id++ {
		c.Upsert(item{ID: id})
	}
	expectIDs(t, c, 3, 2, 1)

	c.Upsert(item{ID: 4})
	expectIDs(t, c, 4, 3, 2)
	if c.Len() != 3 {
		t.Fatalf("expected len 3, got %d", c.Len())
	}
	if _, ok := c.Get(1); ok {
		t.Fatalf("expected oldest entry evicted")
	}
}

func TestCollection_CapReplaceDoesNotEvict(t *testing.T) {
	c := New[item](2)
	c.Upsert(item{ID: 1})
	c.Upsert(item{ID: 2})

	// An in-place replace at cap must not grow or evict anything.
	c.Upsert(item{ID: 1, Body: "x"})
	expectIDs(t, c, 2, 1)
}

func TestCollection_RemoveMissingIsNoop(t *testing.T) {
	c := New[item](0)
	c.Upsert(item{ID: 1})
	if c.Remove(99) {
		t.Fatalf("expected no-op for missing id")
	}
	expectIDs(t, c, 1)
}

func TestCollection_RemoveMiddleReindexes(t *testing.T) {
	c := New[item](0)
	for id := 1; id <= 4; id++ {
		c.Upsert(item{ID: id})
	}
	if !c.Remove(3) {
		t.Fatalf("expected removal")
	}
	expectIDs(t, c, 4, 2, 1)

	// Index must still be coherent after the shift.
	c.Upsert(item{ID: 2, Body: "moved"})
	got, _ := c.Get(2)
	if got.Body != "moved" {
		t.Fatalf("index stale after removal: %+v", got)
	}
}

func TestCollection_ReplaceAppliesCapAndDedup(t *testing.T) {
	c := New[item](3)
	c.Upsert(item{ID: 9})

	c.Replace([]item{{ID: 1}, {ID: 2}, {ID: 1, Body: "dup"}, {ID: 3}, {ID: 4}})
	expectIDs(t, c, 1, 2, 3)
	got, _ := c.Get(1)
	if got.Body != "" {
		t.Fatalf("expected first occurrence kept on duplicate id")
	}
}

func TestCollection_Count(t *testing.T) {
	c := New[item](0)
	c.Upsert(item{ID: 1, Body: "x"})
	c.Upsert(item{ID: 2})
	c.Upsert(item{ID: 3, Body: "x"})

	n := c.Count(func(i item) bool { return i.Body == "x" })
	if n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
}
