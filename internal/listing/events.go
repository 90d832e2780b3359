package listing

type EventKind int

const (
	// EventChanged carries a new snapshot after any state change.
	EventChanged EventKind = iota
	// EventError carries an advisory error; State is the unchanged snapshot.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

type Event[T Item] struct {
	Kind  EventKind
	State State[T]
	Err   error
}

// State is a read-only snapshot of a Manager. Slices are copies.
type State[T Item] struct {
	All         []T
	Filtered    []T
	SearchTerm  string
	SettledTerm string
	UserFilter  int
	Loaded      bool
	Page        Page[T]
}
