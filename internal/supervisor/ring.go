package supervisor

// ring is a fixed-capacity FIFO over output chunks: appending to a full
// ring evicts the oldest chunk in O(1).
type ring struct {
	buf   []string
	start int
	n     int
}

func newRing(capacity int) *ring {
	if capacity <= 0 {
		capacity = 1
	}
	return &ring{buf: make([]string, capacity)}
}

func (r *ring) Append(s string) {
	if r.n < len(r.buf) {
		r.buf[(r.start+r.n)%len(r.buf)] = s
		r.n++
		return
	}
	r.buf[r.start] = s
	r.start = (r.start + 1) % len(r.buf)
}

func (r *ring) Len() int { return r.n }

// Snapshot returns the retained chunks oldest first.
func (r *ring) Snapshot() []string {
	out := make([]string, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
