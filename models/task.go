package models

// SyncTask carries one position update to the background sync worker. Tasks
// are fire-and-forget: they never feed back into tracker state and dropping
// them is always safe.
type SyncTask struct {
	EntityID int64
	Position Position

	// Orientation is not tracked yet but is part of the task layout so sync
	// consumers can be extended without a wire change.
	Yaw   float32
	Pitch float32

	Tick uint64
}
