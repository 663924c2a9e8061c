package domain

// ItemEntry is one (id, status) pair of a trip card collection.
type ItemEntry struct {
	ID     string `json:"id"`
	Status Status `json:"status"`
}

// ItemSet is an insertion-ordered mapping from item id to status. Ids are
// unique; putting an existing id updates its status in place.
type ItemSet struct {
	order  []string
	status map[string]Status
}

// NewItemSet builds a set from entries; later duplicates overwrite earlier statuses.
func NewItemSet(entries ...ItemEntry) *ItemSet {
	s := &ItemSet{status: make(map[string]Status, len(entries))}
	for _, e := range entries {
		s.Put(e.ID, e.Status)
	}
	return s
}

// Put inserts id or updates its status.
func (s *ItemSet) Put(id string, st Status) {
	if id == "" {
		return
	}
	if s.status == nil {
		s.status = make(map[string]Status)
	}
	if _, ok := s.status[id]; !ok {
		s.order = append(s.order, id)
	}
	s.status[id] = st
}

// Has reports whether id is present.
func (s *ItemSet) Has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.status[id]
	return ok
}

// Status returns the status of id.
func (s *ItemSet) Status(id string) (Status, bool) {
	if s == nil {
		return "", false
	}
	st, ok := s.status[id]
	return st, ok
}

// Remove deletes id, reporting whether it was present.
func (s *ItemSet) Remove(id string) bool {
	if !s.Has(id) {
		return false
	}
	delete(s.status, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of ids.
func (s *ItemSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IDs returns the ids in insertion order.
func (s *ItemSet) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Entries returns the (id, status) pairs in insertion order.
func (s *ItemSet) Entries() []ItemEntry {
	if s == nil {
		return nil
	}
	out := make([]ItemEntry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, ItemEntry{ID: id, Status: s.status[id]})
	}
	return out
}

// StatusMap returns a copy of the id to status table.
func (s *ItemSet) StatusMap() map[string]Status {
	out := make(map[string]Status, s.Len())
	if s == nil {
		return out
	}
	for k, v := range s.status {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy.
func (s *ItemSet) Clone() *ItemSet {
	return NewItemSet(s.Entries()...)
}
