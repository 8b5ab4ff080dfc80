package domain

// Response is a player's answer state for one round. Values are never
// modified in place; every mutation returns a fresh copy.
type Response struct {
	// Selections maps item ids to the chosen classification (classify) or a flag marker (detect).
	Selections map[string]string `json:"selections,omitempty"`
	// Order is the ranked item ids for rank rounds.
	Order []string `json:"order,omitempty"`
}

// WithSelection returns a copy with id set to value.
func (r Response) WithSelection(id, value string) Response {
	next := r.clone()
	if next.Selections == nil {
		next.Selections = make(map[string]string, 1)
	}
	next.Selections[id] = value
	return next
}

// WithoutSelection returns a copy with id removed.
func (r Response) WithoutSelection(id string) Response {
	next := r.clone()
	delete(next.Selections, id)
	return next
}

// WithOrder returns a copy with the ranking replaced.
func (r Response) WithOrder(order []string) Response {
	next := r.clone()
	next.Order = append([]string(nil), order...)
	return next
}

// Count is the number of answered entries.
func (r Response) Count() int {
	return len(r.Selections) + len(r.Order)
}

// IsEmpty reports whether nothing has been answered yet.
func (r Response) IsEmpty() bool {
	return r.Count() == 0
}

func (r Response) clone() Response {
	next := Response{}
	if r.Selections != nil {
		next.Selections = make(map[string]string, len(r.Selections))
		for k, v := range r.Selections {
			next.Selections[k] = v
		}
	}
	if r.Order != nil {
		next.Order = append([]string(nil), r.Order...)
	}
	return next
}
