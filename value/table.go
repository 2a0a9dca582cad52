package value

// Table is Croc's Value-to-Value hash map. Null keys are forbidden;
// setting a key's value to null removes that key (spec.md §3 "a value of
// null is the absent marker").
type Table struct {
	m map[Value]Value
}

func NewTable() *Table {
	return &Table{m: make(map[Value]Value)}
}

// Get returns the value stored at key, or Null() if absent.
func (t *Table) Get(key Value) Value {
	if v, ok := t.m[key]; ok {
		return v
	}
	return Null()
}

// Has reports whether key is present.
func (t *Table) Has(key Value) bool {
	_, ok := t.m[key]
	return ok
}

// Set stores val at key. Setting Null() removes the key. Panics via the
// caller's responsibility to raise ValueError on a Null key; Table itself
// only enforces the storage convention.
func (t *Table) Set(key, val Value) {
	if val.IsNull() {
		delete(t.m, key)
		return
	}
	t.m[key] = val
}

func (t *Table) Len() int { return len(t.m) }

// Each calls fn for every key/value pair in unspecified order, matching
// the language's own unordered-iteration guarantee for tables.
func (t *Table) Each(fn func(k, v Value) bool) {
	for k, v := range t.m {
		if !fn(k, v) {
			return
		}
	}
}
