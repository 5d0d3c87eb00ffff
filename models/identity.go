package models

// Resolution is the result of mapping a name-or-ID to a remote identifier.
// Resolved means a name lookup found a match; otherwise the input is carried
// through unchanged and assumed to already be an identifier.
type Resolution struct {
	Input    string
	Resolved bool
	id       string
}

// ResolvedID builds a Resolution for a successful name lookup
func ResolvedID(input, id string) Resolution {
	return Resolution{Input: input, Resolved: true, id: id}
}

// Unresolved builds a Resolution that falls back to the original input
func Unresolved(input string) Resolution {
	return Resolution{Input: input}
}

// ID returns the identifier to use downstream
func (r Resolution) ID() string {
	if r.Resolved {
		return r.id
	}
	return r.Input
}

// IsEmpty reports whether there was nothing to resolve
func (r Resolution) IsEmpty() bool {
	return r.Input == "" && !r.Resolved
}
