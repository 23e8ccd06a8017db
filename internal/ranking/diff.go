package ranking

// Kind classifies an entity's change between two snapshots.
type Kind int

const (
	Stable Kind = iota
	Enter
	Exit
	Move
)

func (k Kind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Exit:
		return "exit"
	case Move:
		return "move"
	default:
		return "stable"
	}
}

// Transition is the classification for one key. From and To are -1 when
// the key is absent from the previous or current snapshot respectively.
type Transition struct {
	Key  string
	Kind Kind
	From int
	To   int
}

// Diff classifies every key of previous and current. An entity moving into
// a rank held by another entity drags that previous holder into Move too,
// so both halves of a swap animate together.
func Diff(previous, current Snapshot) []Transition {
	prevRank := make(map[string]int, len(previous.Entries))
	for _, e := range previous.Entries {
		prevRank[e.Key] = e.Rank
	}
	curRank := make(map[string]int, len(current.Entries))
	for _, e := range current.Entries {
		curRank[e.Key] = e.Rank
	}

	// Rank is a bijection within a snapshot, so the previous holder of any
	// rank is unique: Entries[r].Key.
	displaced := make(map[string]struct{})
	for _, e := range current.Entries {
		from, ok := prevRank[e.Key]
		if !ok || from == e.Rank {
			continue
		}
		if e.Rank < len(previous.Entries) {
			if holder := previous.Entries[e.Rank].Key; holder != e.Key {
				displaced[holder] = struct{}{}
			}
		}
	}

	out := make([]Transition, 0, len(current.Entries)+len(previous.Entries))
	for _, e := range current.Entries {
		from, ok := prevRank[e.Key]
		t := Transition{Key: e.Key, From: from, To: e.Rank}
		_, pushed := displaced[e.Key]
		switch {
		case !ok:
			t.Kind = Enter
			t.From = -1
		case from != e.Rank || pushed:
			t.Kind = Move
		default:
			t.Kind = Stable
		}
		out = append(out, t)
	}
	for _, e := range previous.Entries {
		if _, ok := curRank[e.Key]; ok {
			continue
		}
		out = append(out, Transition{Key: e.Key, Kind: Exit, From: e.Rank, To: -1})
	}
	return out
}

// Changed reports whether any transition is not Stable.
func Changed(transitions []Transition) bool {
	for _, t := range transitions {
		if t.Kind != Stable {
			return true
		}
	}
	return false
}

// Tracker owns the single previous-snapshot slot used for diffing.
type Tracker struct {
	previous Snapshot
}

// Observe diffs current against the retained snapshot, then retains current.
// The first call diffs against an empty snapshot.
func (t *Tracker) Observe(current Snapshot) []Transition {
	transitions := Diff(t.previous, current)
	t.previous = current
	return transitions
}

// Previous returns the retained snapshot.
func (t *Tracker) Previous() Snapshot {
	return t.previous
}

// Reset forgets the retained snapshot.
func (t *Tracker) Reset() {
	t.previous = Snapshot{}
}
