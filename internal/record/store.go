package record

// Store maps identity keys to records. It remembers first-insertion order so
// that records are written back in the order they were loaded or added.
// A Store is not safe for concurrent use.
type Store struct {
	records map[Key]Record
	order   []Key
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		records: make(map[Key]Record),
	}
}

// Get returns the record stored under key
func (s *Store) Get(key Key) (Record, bool) {
	r, ok := s.records[key]
	return r, ok
}

// Has reports whether a record exists for key
func (s *Store) Has(key Key) bool {
	_, ok := s.records[key]
	return ok
}

// Put stores r under its identity key. An existing record with the same key
// is replaced in place and keeps its position.
func (s *Store) Put(r Record) {
	key := r.Key()
	if _, exists := s.records[key]; !exists {
		s.order = append(s.order, key)
	}
	s.records[key] = r
}

// Len returns the number of records
func (s *Store) Len() int {
	return len(s.order)
}

// Keys returns the keys in store order
func (s *Store) Keys() []Key {
	keys := make([]Key, len(s.order))
	copy(keys, s.order)
	return keys
}

// Records returns a copy of all records in store order
func (s *Store) Records() []Record {
	out := make([]Record, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, s.records[key])
	}
	return out
}

// Update applies fn to every record and stores the result
func (s *Store) Update(fn func(Record) Record) {
	for _, key := range s.order {
		updated := fn(s.records[key])
		// fn must not change identity fields
		updated.Normalized, updated.TargetLang = key.Normalized, key.TargetLang
		s.records[key] = updated
	}
}

// Clone returns an independent copy of the store
func (s *Store) Clone() *Store {
	c := &Store{
		records: make(map[Key]Record, len(s.records)),
		order:   make([]Key, len(s.order)),
	}
	copy(c.order, s.order)
	for k, v := range s.records {
		c.records[k] = v
	}
	return c
}
