package entity

// CatalogSnapshot is the full visible catalog for one user, ordered by
// createdAt descending. Snapshots are value copies: only the live view builds
// them, consumers never mutate one. A snapshot with Err set is terminal and
// distinct from an empty catalog.
type CatalogSnapshot struct {
	Items []Item `json:"items"`
	Err   error  `json:"-"`
}
