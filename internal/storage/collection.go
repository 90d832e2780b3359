package storage

// Collection is a typed view of one named snapshot in the store.
type Collection[T any] struct {
	store *Store
	name  string
}

func NewCollection[T any](store *Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

func (c *Collection[T]) Name() string { return c.name }

// Load returns the cached items and whether a fresh snapshot existed.
func (c *Collection[T]) Load() ([]T, bool, error) {
	var items []T
	ok, err := c.store.LoadCollection(c.name, &items)
	if err != nil || !ok {
		return nil, false, err
	}
	return items, true, nil
}

func (c *Collection[T]) Save(items []T) error {
	return c.store.SaveCollection(c.name, items)
}

func (c *Collection[T]) Invalidate() error {
	return c.store.Invalidate(c.name)
}
