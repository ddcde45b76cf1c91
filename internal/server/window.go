package server

// Window is one page of an in-memory result list. It is computed per request
// from a freshly fetched full list and never cached.
type Window[T any] struct {
	Items      []T  `json:"items"`
	Offset     int  `json:"offset"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	HasMore    bool `json:"hasMore"`
	NextOffset *int `json:"nextOffset"`
}

// Paginate slices list to the [offset, offset+limit) window. A negative
// offset is clamped to 0 and the slice is clipped at the end of the list. A
// limit of 0 returns no items but still reports the full total, so callers
// can probe the result size cheaply.
func Paginate[T any](list []T, offset, limit int) Window[T] {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if list == nil {
		list = []T{}
	}
	total := len(list)

	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	w := Window[T]{
		Items:   list[start:end],
		Offset:  offset,
		Limit:   limit,
		Total:   total,
		HasMore: offset+limit < total,
	}
	if w.HasMore {
		next := offset + limit
		w.NextOffset = &next
	}
	return w
}

// ChunkAndSend splits ids into consecutive groups of at most chunkSize and
// calls send once per group, sequentially. AnkiConnect caps the number of
// items it accepts per call for some actions; chunkSize is that cap, not a
// tuning knob. Results are concatenated in input order. Empty input issues no
// call at all. The first failing group aborts the remainder.
func ChunkAndSend[T, R any](ids []T, chunkSize int, send func([]T) ([]R, error)) ([]R, error) {
	if chunkSize <= 0 {
		panic("server: ChunkAndSend requires a positive chunk size")
	}
	var out []R
	for start := 0; start < len(ids); start += chunkSize {
		end := start + chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		results, err := send(ids[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}
	return out, nil
}
