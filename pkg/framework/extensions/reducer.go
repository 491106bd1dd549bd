package extensions

// Reduce returns the state that results from applying action to state.
// It never mutates its input. Actions it does not recognize return state
// itself, not a copy.
func Reduce(state State, action Action) State {
	if state == nil {
		state = Initial()
	}

	switch a := action.(type) {
	case DeleteAction:
		next := state.clone()
		for _, id := range a.IDs {
			delete(next, id)
		}
		return next

	case AddAction:
		next := state.clone()
		next[a.Entry.ID] = a.Entry
		return next

	case UpdateAction:
		old := state[a.ID]
		target := a.ID
		if a.Data.ID != nil {
			target = *a.Data.ID
		}
		// On id migration the entry under a.ID is left in place.
		// TODO: delete a.ID here once migrating updates are confirmed to be moves.
		next := state.clone()
		next[target] = a.Data.ApplyTo(old)
		return next

	default:
		return state
	}
}
