package ecs

// EntityId encodes a generation (upper 32 bits) and a slot index (lower 32 bits).
// Slot 0 is never handed out, so the zero EntityId never names an entity.
type EntityId uint64

// NewEntityId creates an EntityId from a generation and slot index
func NewEntityId(generation uint32, index uint32) EntityId {
	return EntityId(uint64(generation)<<32 | uint64(index))
}

// Generation extracts the generation counter from the entity ID
func (e EntityId) Generation() uint32 {
	return uint32(e >> 32)
}

// Index extracts the slot index from the entity ID
func (e EntityId) Index() uint32 {
	return uint32(e & 0xFFFFFFFF)
}

type slotState uint8

const (
	slotFree slotState = iota
	slotReserved
	slotAlive
)

// entitySlot tracks the lifecycle of one index. The generation is bumped every
// time the slot is released, which invalidates all ids handed out for it.
type entitySlot struct {
	generation uint32
	state      slotState
}
