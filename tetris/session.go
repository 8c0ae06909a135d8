package tetris

import (
	"image/color"

	"github.com/google/uuid"
	"github.com/kamstrup/intmap"
	"github.com/plus3/tumbletris/ecs"
)

// Entities creates and destroys entities. ecs.Storage applies changes
// immediately; ecs.Commands defers them to the end of the frame.
type Entities interface {
	Spawn(components ...any) ecs.EntityId
	Delete(id ecs.EntityId)
}

// Block marks an entity as one cell of a piece.
type Block struct {
	Kind Kind
}

// Floor marks the static body under the board.
type Floor struct{}

// Camera holds the world-to-screen scale, in pixels per block side.
type Camera struct {
	PixelsPerUnit float64
}

// RegisterComponents registers the gameplay component types.
func RegisterComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Block](registry)
	ecs.RegisterComponent[Floor](registry)
	ecs.RegisterComponent[Camera](registry)
}

// BlockSet is an unordered set of block entities.
type BlockSet struct {
	ids *intmap.Map[ecs.EntityId, struct{}]
}

func NewBlockSet(ids ...ecs.EntityId) *BlockSet {
	s := &BlockSet{ids: intmap.New[ecs.EntityId, struct{}](4)}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add inserts id and reports whether it was new.
func (s *BlockSet) Add(id ecs.EntityId) bool {
	if s.ids.Has(id) {
		return false
	}
	s.ids.Put(id, struct{}{})
	return true
}

func (s *BlockSet) Has(id ecs.EntityId) bool {
	return s != nil && s.ids.Has(id)
}

func (s *BlockSet) Len() int {
	if s == nil {
		return 0
	}
	return s.ids.Len()
}

// ForEach visits every id until fn returns false.
func (s *BlockSet) ForEach(fn func(id ecs.EntityId) bool) {
	if s == nil {
		return
	}
	s.ids.ForEach(func(id ecs.EntityId, _ struct{}) bool {
		return fn(id)
	})
}

// IDs returns the members in no particular order.
func (s *BlockSet) IDs() []ecs.EntityId {
	ids := make([]ecs.EntityId, 0, s.Len())
	s.ForEach(func(id ecs.EntityId) bool {
		ids = append(ids, id)
		return true
	})
	return ids
}

// PieceRegistry tracks the entities of the falling piece.
type PieceRegistry struct {
	Kind     Kind
	Sequence uint64
	Blocks   *BlockSet
	Joints   []ecs.EntityId
}

// Empty reports whether no piece has been spawned yet.
func (r PieceRegistry) Empty() bool {
	return r.Blocks.Len() == 0
}

// Session is the mutable game state shared by the gameplay systems. It is
// owned by the game loop and handed to each system explicitly.
type Session struct {
	ID              uuid.UUID
	Board           Board
	BlockAppearance color.RGBA
	Piece           PieceRegistry
	Camera          ecs.EntityId
	Spawned         uint64
}

func NewSession(board Board) *Session {
	return &Session{
		ID:    uuid.New(),
		Board: board,
	}
}
