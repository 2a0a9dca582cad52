package value

// Memblock owns or views a byte buffer. Owning memblocks may be resized;
// view memblocks (created over e.g. host-supplied memory) forbid it.
type Memblock struct {
	Data   []byte
	Owning bool
}

func NewMemblock(size int) *Memblock {
	return &Memblock{Data: make([]byte, size), Owning: true}
}

func NewMemblockView(data []byte) *Memblock {
	return &Memblock{Data: data, Owning: false}
}

func (m *Memblock) Len() int { return len(m.Data) }

// Resize grows or shrinks an owning memblock in place; callers must check
// Owning first and raise a StateError otherwise (spec.md: "view memblocks
// forbid it").
func (m *Memblock) Resize(n int) {
	if n <= len(m.Data) {
		m.Data = m.Data[:n]
		return
	}
	grown := make([]byte, n)
	copy(grown, m.Data)
	m.Data = grown
}
