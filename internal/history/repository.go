package history

import (
	"context"

	"random-color-picker/internal/model"
)

const (
	RecentKey = "recent_colors"
	SavedKey  = "saved_colors"
)

// PreferenceStore is the durable key-value store the lists live in.
type PreferenceStore interface {
	Get(key string) (string, bool)
	Update(key string, fn func(current string, ok bool) (string, bool)) error
	Subscribe(key string) (string, <-chan string)
	Unsubscribe(id string)
}

type Repository struct {
	store PreferenceStore
}

func NewRepository(store PreferenceStore) *Repository {
	return &Repository{store: store}
}

func (r *Repository) Recent() []model.ColorValue {
	return r.list(RecentKey)
}

func (r *Repository) Saved() []model.ColorValue {
	return r.list(SavedKey)
}

func (r *Repository) list(key string) []model.ColorValue {
	v, _ := r.store.Get(key)
	return Decode(v)
}

func (r *Repository) SetRecent(colors []model.ColorValue) error {
	return r.store.Update(RecentKey, func(string, bool) (string, bool) {
		return Encode(colors), true
	})
}

func (r *Repository) AddRecent(c model.ColorValue) error {
	_, err := r.insert(RecentKey, c)
	return err
}

// AddSaved bookmarks c. displaced is true when the list was full and its
// oldest entry was evicted to make room.
func (r *Repository) AddSaved(c model.ColorValue) (displaced bool, err error) {
	return r.insert(SavedKey, c)
}

func (r *Repository) insert(key string, c model.ColorValue) (bool, error) {
	displaced := false
	err := r.store.Update(key, func(cur string, _ bool) (string, bool) {
		list := Decode(cur)
		next := Insert(list, c)
		displaced = len(list) >= Capacity && !contains(list, c)
		return Encode(next), true
	})
	return displaced, err
}

// RemoveSaved deletes c from the saved list. A missing color leaves the store untouched.
func (r *Repository) RemoveSaved(c model.ColorValue) error {
	return r.store.Update(SavedKey, func(cur string, _ bool) (string, bool) {
		list := Decode(cur)
		if !contains(list, c) {
			return cur, false
		}
		return Encode(Remove(list, c)), true
	})
}

// Watch streams the decoded list stored under key after every write until ctx is done.
func (r *Repository) Watch(ctx context.Context, key string) <-chan []model.ColorValue {
	id, raw := r.store.Subscribe(key)
	out := make(chan []model.ColorValue, 1)
	go func() {
		defer close(out)
		defer r.store.Unsubscribe(id)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-raw:
				if !ok {
					return
				}
				select {
				case out <- Decode(v):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
