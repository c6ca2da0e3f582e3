package spec

import "time"

// Group is a named, ordered set of attribute labels, e.g. "Display" -> ["Size", "Resolution"].
// Timestamps are only loaded by the admin endpoints.
type Group struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Keys      []string   `json:"keys"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ProductSpec holds a product's values for one group. Values[i] belongs to Group.Keys[i].
type ProductSpec struct {
	ProductID string   `json:"product_id"`
	GroupID   string   `json:"group_id"`
	Values    []string `json:"values"`
}

type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Table is the display form of one group on a product page.
type Table struct {
	GroupName string  `json:"group_name"`
	Specs     []Entry `json:"specs"`
}
