package cases

// State is the full durable state of the system: the user registry,
// the two role sets, and both case collections. It is loaded wholesale
// at startup and rewritten wholesale after every mutation.
type State struct {
	Users     []int64 `json:"users"`
	SudoUsers []int64 `json:"sudo_users"`
	Blacklist []int64 `json:"blacklist"`
	Reports   []Case  `json:"reports"`
	Appeals   []Case  `json:"appeals"`
}

// EmptyState returns a state with all collections present but empty.
func EmptyState() State {
	return State{
		Users:     []int64{},
		SudoUsers: []int64{},
		Blacklist: []int64{},
		Reports:   []Case{},
		Appeals:   []Case{},
	}
}

// Clone returns a deep copy of the state. The controller mutates a
// clone and only adopts it after the store accepts it.
func (s State) Clone() State {
	out := State{
		Users:     append([]int64{}, s.Users...),
		SudoUsers: append([]int64{}, s.SudoUsers...),
		Blacklist: append([]int64{}, s.Blacklist...),
		Reports:   make([]Case, len(s.Reports)),
		Appeals:   make([]Case, len(s.Appeals)),
	}
	for i, c := range s.Reports {
		c.Evidence = append([]string{}, c.Evidence...)
		out.Reports[i] = c
	}
	for i, c := range s.Appeals {
		c.Evidence = append([]string{}, c.Evidence...)
		out.Appeals[i] = c
	}
	return out
}

// Normalize replaces nil collections with empty ones so that saved
// snapshots round-trip empty sequences losslessly.
func (s *State) Normalize() {
	if s.Users == nil {
		s.Users = []int64{}
	}
	if s.SudoUsers == nil {
		s.SudoUsers = []int64{}
	}
	if s.Blacklist == nil {
		s.Blacklist = []int64{}
	}
	if s.Reports == nil {
		s.Reports = []Case{}
	}
	if s.Appeals == nil {
		s.Appeals = []Case{}
	}
	for i := range s.Reports {
		if s.Reports[i].Evidence == nil {
			s.Reports[i].Evidence = []string{}
		}
	}
	for i := range s.Appeals {
		if s.Appeals[i].Evidence == nil {
			s.Appeals[i].Evidence = []string{}
		}
	}
}

// Store defines the persistence contract for State. Load returns an
// empty state when the backing medium does not exist yet, and a
// CorruptError when it exists but cannot be decoded. Save must replace
// the previous snapshot atomically enough that a crash mid-write never
// leaves the store unreadable.
type Store interface {
	Load() (State, error)
	Save(State) error
	Close() error
}

// CorruptError reports an unreadable store at startup. The process
// must refuse to start rather than operate on partial data.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return "corrupt store at " + e.Path + ": " + e.Err.Error()
}

func (e *CorruptError) Unwrap() error { return e.Err }

// PersistError reports a failed durable write. The triggering mutation
// must not be reported as successful.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return "persist " + e.Op + ": " + e.Err.Error()
}

func (e *PersistError) Unwrap() error { return e.Err }
