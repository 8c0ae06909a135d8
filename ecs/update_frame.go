package ecs

// UpdateFrame is handed to every system during one Scheduler.Once call.
type UpdateFrame struct {
	DeltaTime float64
	Index     uint64
	Commands  *Commands
	Storage   *Storage
}

func newUpdateFrame(dt float64, index uint64, storage *Storage) *UpdateFrame {
	return &UpdateFrame{
		DeltaTime: dt,
		Index:     index,
		Commands:  newCommands(storage),
		Storage:   storage,
	}
}
