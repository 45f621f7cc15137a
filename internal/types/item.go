package types

import "fmt"

// WorkItem is one molecule read from the input list.
type WorkItem struct {
	ID         int
	Name       string
	Descriptor string
	Line       int
}

// NewWorkItem builds the item with its generated name.
func NewWorkItem(id int, descriptor string, line int) WorkItem {
	return WorkItem{
		ID:         id,
		Name:       ItemName(id),
		Descriptor: descriptor,
		Line:       line,
	}
}

// ItemName returns the directory and file stem used for item id.
func ItemName(id int) string {
	return fmt.Sprintf("molecule_%d", id)
}
