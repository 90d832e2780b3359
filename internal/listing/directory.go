package listing

import (
	"slices"

	"github.com/pders01/postr/internal/storage"
)

// Directory resolves user ids to users.
type Directory struct {
	users []storage.User
	byID  map[int]storage.User
}

func NewDirectory(users []storage.User) *Directory {
	d := &Directory{
		users: slices.Clone(users),
		byID:  make(map[int]storage.User, len(users)),
	}
	for _, u := range users {
		d.byID[u.ID] = u
	}
	slices.SortFunc(d.users, func(a, b storage.User) int { return a.ID - b.ID })
	return d
}

func (d *Directory) Lookup(id int) (storage.User, bool) {
	if d == nil {
		return storage.User{}, false
	}
	u, ok := d.byID[id]
	return u, ok
}

// Name returns the user's name, or storage.UnknownUser when id is nil or
// does not resolve.
func (d *Directory) Name(id *int) string {
	if id == nil {
		return storage.UnknownUser
	}
	if u, ok := d.Lookup(*id); ok && u.Name != "" {
		return u.Name
	}
	return storage.UnknownUser
}

// Users returns every known user ordered by id.
func (d *Directory) Users() []storage.User {
	if d == nil {
		return nil
	}
	return slices.Clone(d.users)
}

func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.users)
}
