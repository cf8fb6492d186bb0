package domain

// DueCard pairs an item with the learner's memory state for it, as returned
// by the due-card queries.
type DueCard struct {
	Item   Item
	Memory MemoryState
}
