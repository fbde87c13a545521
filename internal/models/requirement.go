package models

// RequiredDocument is a derived, non-persisted checklist entry. It is
// recomputed from the canonical record on every request.
type RequiredDocument struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Type     string `json:"type"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
	Quantity int    `json:"quantity,omitempty"`
}

// Requirements is the resolver output: the full ordered document list, the
// count of required entries, and a category-keyed view of the same entries.
type Requirements struct {
	Documents     []RequiredDocument            `json:"documents"`
	TotalRequired int                           `json:"total_required"`
	ByCategory    map[string][]RequiredDocument `json:"by_category"`
}
