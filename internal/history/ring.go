package history

// ring is a fixed-capacity FIFO; pushing into a full ring overwrites the oldest item.
type ring struct {
	items []Interaction
	head  int // index of the oldest item
	size  int
}

func newRing(capacity int) *ring {
	return &ring{items: make([]Interaction, capacity)}
}

func (r *ring) push(it Interaction) {
	if r.size < len(r.items) {
		r.items[(r.head+r.size)%len(r.items)] = it
		r.size++
		return
	}
	r.items[r.head] = it
	r.head = (r.head + 1) % len(r.items)
}

// slice copies the items out, oldest first.
func (r *ring) slice() []Interaction {
	out := make([]Interaction, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.items[(r.head+i)%len(r.items)]
	}
	return out
}
