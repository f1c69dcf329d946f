package store

// IndexedValueStore layers a store-local integer id atop a ValueStore,
// so that a value can be referenced by a compact id instead of
// repeating its offset/len pair at every use site. The creator uses
// this for deduplicating repeated symlink targets.
type IndexedValueStore struct {
	values *ValueStore
	index  []Ref
	seen   map[string]uint32
}

// NewIndexed returns an empty IndexedValueStore.
func NewIndexed() *IndexedValueStore {
	return &IndexedValueStore{
		values: New(),
		seen:   make(map[string]uint32),
	}
}

// Add appends b if it has not been seen before and returns its id;
// repeated identical values reuse the existing id.
func (s *IndexedValueStore) Add(b []byte) uint32 {
	if id, ok := s.seen[string(b)]; ok {
		return id
	}
	ref := s.values.Append(b)
	id := uint32(len(s.index))
	s.index = append(s.index, ref)
	s.seen[string(b)] = id
	return id
}

// Get returns the bytes stored under id.
func (s *IndexedValueStore) Get(id uint32) []byte {
	return s.values.Bytes(s.index[id])
}

// RefOf returns the underlying Ref for id, for serialization.
func (s *IndexedValueStore) RefOf(id uint32) Ref {
	return s.index[id]
}

// Len returns the number of distinct values indexed.
func (s *IndexedValueStore) Len() int {
	return len(s.index)
}

// Values exposes the backing ValueStore, for writing the pack to disk.
func (s *IndexedValueStore) Values() *ValueStore {
	return s.values
}
