package entities

// FieldChange describes one field that differs between the persisted record
// and the incoming listing, with values already normalized for display.
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// ChangedPair couples a persisted record with the incoming listing that
// supersedes it.
type ChangedPair struct {
	Existing EventRecord   `json:"existing"`
	Incoming EventRecord   `json:"incoming"`
	Changes  []FieldChange `json:"changes"`
	// WasDeleted flags a resurrection: the URL reappeared for a record that
	// had been soft-deleted.
	WasDeleted bool `json:"was_deleted,omitempty"`
}

// ComparisonResult is the four-way partition produced by the diff engine.
// It is transient and never persisted.
type ComparisonResult struct {
	New       []EventRecord `json:"new"`
	Changed   []ChangedPair `json:"changed"`
	Deleted   []EventRecord `json:"deleted"`
	Unchanged []EventRecord `json:"unchanged"`
}

// ComparisonSummary holds the counts of a comparison.
type ComparisonSummary struct {
	New       int `json:"new"`
	Changed   int `json:"changed"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

// Summary returns the counts of each partition.
func (c *ComparisonResult) Summary() ComparisonSummary {
	return ComparisonSummary{
		New:       len(c.New),
		Changed:   len(c.Changed),
		Deleted:   len(c.Deleted),
		Unchanged: len(c.Unchanged),
	}
}

// TotalIncoming returns how many incoming listings the comparison covered.
func (c *ComparisonResult) TotalIncoming() int {
	return len(c.New) + len(c.Changed) + len(c.Unchanged)
}

// TotalExisting returns how many persisted records the comparison covered.
func (c *ComparisonResult) TotalExisting() int {
	return len(c.Changed) + len(c.Deleted) + len(c.Unchanged)
}
