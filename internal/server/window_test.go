package server

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestPaginate(t *testing.T) {
	full := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}

	t.Run("middle_window", func(t *testing.T) {
		w := Paginate(full, 5, 3)
		if !reflect.DeepEqual(w.Items, []int{5, 6, 7}) {
			t.Fatalf("items = %v", w.Items)
		}
		if w.Total != 10 || !w.HasMore {
			t.Fatalf("total = %d, hasMore = %v", w.Total, w.HasMore)
		}
		if w.NextOffset == nil || *w.NextOffset != 8 {
			t.Fatalf("nextOffset = %v, want 8", w.NextOffset)
		}
	})

	t.Run("offset_past_end", func(t *testing.T) {
		w := Paginate(full, 20, 5)
		if len(w.Items) != 0 {
			t.Fatalf("items = %v, want empty", w.Items)
		}
		if w.HasMore {
			t.Fatal("hasMore = true, want false")
		}
		if w.NextOffset != nil {
			t.Fatalf("nextOffset = %v, want nil", w.NextOffset)
		}
	})

	t.Run("negative_offset_clamped", func(t *testing.T) {
		w := Paginate(full, -3, 2)
		if !reflect.DeepEqual(w.Items, []int{0, 1}) {
			t.Fatalf("items = %v", w.Items)
		}
	})

	t.Run("zero_limit_probes_total", func(t *testing.T) {
		w := Paginate(full, 0, 0)
		if len(w.Items) != 0 {
			t.Fatalf("items = %v, want empty", w.Items)
		}
		if w.Total != 10 || !w.HasMore {
			t.Fatalf("total = %d, hasMore = %v, want 10/true", w.Total, w.HasMore)
		}
	})

	t.Run("last_page", func(t *testing.T) {
		w := Paginate(full, 8, 5)
		if !reflect.DeepEqual(w.Items, []int{8, 9}) {
			t.Fatalf("items = %v", w.Items)
		}
		if w.HasMore {
			t.Fatal("hasMore = true on last page")
		}
	})
}

func TestChunkAndSend(t *testing.T) {
	ids := make([]int, 250)
	for i := range ids {
		ids[i] = i + 1
	}

	var sizes []int
	got, err := ChunkAndSend(ids, 100, func(chunk []int) ([]int, error) {
		sizes = append(sizes, len(chunk))
		return chunk, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(sizes, []int{100, 100, 50}) {
		t.Fatalf("chunk sizes = %v, want [100 100 50]", sizes)
	}
	if !reflect.DeepEqual(got, ids) {
		t.Fatalf("results not concatenated in input order")
	}
}

func TestChunkAndSendEmptyInput(t *testing.T) {
	calls := 0
	got, err := ChunkAndSend(nil, 100, func(chunk []int) ([]int, error) {
		calls++
		return chunk, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 0 {
		t.Fatalf("send called %d times for empty input", calls)
	}
	if len(got) != 0 {
		t.Fatalf("results = %v, want empty", got)
	}
}

func TestChunkAndSendStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := ChunkAndSend([]int{1, 2, 3, 4}, 2, func(chunk []int) ([]int, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return chunk, nil
	})
	if err != boom {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls != 1 {
		t.Fatalf("send called %d times after failure, want 1", calls)
	}
}

func TestChunkAndSendRejectsNonPositiveChunkSize(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for chunk size 0")
		}
	}()
	_, _ = ChunkAndSend([]int{1}, 0, func(chunk []int) ([]int, error) { return chunk, nil })
}
