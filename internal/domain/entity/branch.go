package entity

import "time"

// Branch represents one salon location from the branch directory
type Branch struct {
	ID        string
	Name      string
	Address   string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlaceholderBranch is the synthetic branch substituted when the directory
// has no row for the referenced id. It carries only the id.
func PlaceholderBranch(id string) *Branch {
	return &Branch{ID: id}
}
