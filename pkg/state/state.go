// Package state persists the image set of the intake service so that a
// restarted service can restore its augmented images.
//
// Backends:
//   - file: a JSON document on local disk (single instance)
//   - redis: one Redis key holding the JSON document
//   - mongo: one MongoDB document per image
//
// Open a store:
//
//	store, err := state.NewFileStore("state.json")
//	st, err := store.Load(ctx)
//	st.Put(state.Entry{Name: "000000_000.jpg", Data: data})
//	err = store.Save(ctx, st)
package state

import (
	"context"
	"sort"
	"time"
)

// Entry is one stored image file.
type Entry struct {
	Name      string    `json:"name" bson:"_id"`
	Data      []byte    `json:"data" bson:"data"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// State is the persisted image set, ordered by name.
type State struct {
	Images    []Entry   `json:"images"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is the interface for state storage backends.
type Store interface {
	// Load returns the saved state, or an empty state if nothing was saved.
	Load(ctx context.Context) (*State, error)

	// Save replaces the saved state.
	Save(ctx context.Context, st *State) error

	Close() error
}

// Names returns the image names in order.
func (s *State) Names() []string {
	names := make([]string, len(s.Images))
	for i, e := range s.Images {
		names[i] = e.Name
	}
	return names
}

// Get returns the entry called name.
func (s *State) Get(name string) (Entry, bool) {
	i := sort.Search(len(s.Images), func(i int) bool { return s.Images[i].Name >= name })
	if i < len(s.Images) && s.Images[i].Name == name {
		return s.Images[i], true
	}
	return Entry{}, false
}

// Put inserts or replaces e, keeping the images sorted by name.
func (s *State) Put(e Entry) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	i := sort.Search(len(s.Images), func(i int) bool { return s.Images[i].Name >= e.Name })
	if i < len(s.Images) && s.Images[i].Name == e.Name {
		s.Images[i] = e
		return
	}
	s.Images = append(s.Images, Entry{})
	copy(s.Images[i+1:], s.Images[i:])
	s.Images[i] = e
}

// Len returns the number of images.
func (s *State) Len() int { return len(s.Images) }

func (s *State) normalize() {
	sort.Slice(s.Images, func(i, j int) bool { return s.Images[i].Name < s.Images[j].Name })
}
