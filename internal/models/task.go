package models

// Task represents a task whose address has to be placed on the map.
type Task struct {
	ID      int    // ID is the unique identifier for the task.
	Address string // Address is the location to be geocoded.
}
