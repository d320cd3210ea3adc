package port

// RecentAddressStore persists the short most-recent-first list of addresses
// the user has successfully submitted.
type RecentAddressStore interface {
	// Record moves address to the front, deduplicating case-sensitively and
	// truncating to the configured maximum.
	Record(address string) error

	// List returns the current list, most recent first.
	List() []string
}
