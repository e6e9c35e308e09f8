package domain

// Watchlist is the user's set of tracked coins.
//
// It is an immutable value: Add and Remove return a new Watchlist and never
// modify the receiver. Ids are unique; insertion order is kept only so that
// output is deterministic.
type Watchlist struct {
	ids []CoinID
}

// NewWatchlist builds a watchlist from ids, dropping blanks and duplicates.
func NewWatchlist(ids ...CoinID) Watchlist {
	return Watchlist{}.Add(ids...)
}

// Add returns the set union of w and ids.
func (w Watchlist) Add(ids ...CoinID) Watchlist {
	seen := make(map[CoinID]struct{}, len(w.ids)+len(ids))
	out := make([]CoinID, 0, len(w.ids)+len(ids))
	for _, id := range append(w.IDs(), ids...) {
		if !id.IsValid() {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return Watchlist{ids: out}
}

// Remove returns w without ids. Ids not present are ignored.
func (w Watchlist) Remove(ids ...CoinID) Watchlist {
	drop := make(map[CoinID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make([]CoinID, 0, len(w.ids))
	for _, id := range w.ids {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return Watchlist{ids: out}
}

// Contains reports whether id is tracked.
func (w Watchlist) Contains(id CoinID) bool {
	for _, have := range w.ids {
		if have == id {
			return true
		}
	}
	return false
}

// IDs returns a copy of the tracked ids in insertion order.
func (w Watchlist) IDs() []CoinID {
	out := make([]CoinID, len(w.ids))
	copy(out, w.ids)
	return out
}

// Len returns the number of tracked coins.
func (w Watchlist) Len() int {
	return len(w.ids)
}

// IsEmpty reports whether nothing is tracked.
func (w Watchlist) IsEmpty() bool {
	return len(w.ids) == 0
}

// Equal reports whether both watchlists track the same set of ids,
// regardless of order.
func (w Watchlist) Equal(other Watchlist) bool {
	if w.Len() != other.Len() {
		return false
	}
	for _, id := range w.ids {
		if !other.Contains(id) {
			return false
		}
	}
	return true
}
