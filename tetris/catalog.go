package tetris

import (
	"math/rand/v2"
)

// Kind names one of the seven tetrominoes.
type Kind uint8

const (
	KindI Kind = iota
	KindO
	KindT
	KindJ
	KindL
	KindS
	KindZ
)

// KindCount is the number of distinct kinds.
const KindCount = 7

var kindNames = [KindCount]string{"I", "O", "T", "J", "L", "S", "Z"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "?"
}

// Kinds returns every kind in catalog order.
func Kinds() []Kind {
	kinds := make([]Kind, KindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// JointSpec connects two blocks of a layout by index.
type JointSpec struct {
	A, B int
}

// Layout is a piece's geometry in tetromino space, y up, pivot at (0, 0).
type Layout struct {
	Coords [4]IVec
	Joints []JointSpec
}

var layouts = [KindCount]Layout{
	KindI: withAdjacentJoints([4]IVec{{-1, 0}, {0, 0}, {1, 0}, {2, 0}}),
	KindO: withAdjacentJoints([4]IVec{{0, 0}, {1, 0}, {0, 1}, {1, 1}}),
	KindT: withAdjacentJoints([4]IVec{{-1, 0}, {0, 0}, {1, 0}, {0, 1}}),
	KindJ: withAdjacentJoints([4]IVec{{-1, 1}, {-1, 0}, {0, 0}, {1, 0}}),
	KindL: withAdjacentJoints([4]IVec{{1, 1}, {-1, 0}, {0, 0}, {1, 0}}),
	KindS: withAdjacentJoints([4]IVec{{-1, 0}, {0, 0}, {0, 1}, {1, 1}}),
	KindZ: withAdjacentJoints([4]IVec{{-1, 1}, {0, 1}, {0, 0}, {1, 0}}),
}

// withAdjacentJoints joins every pair of blocks that share an edge.
func withAdjacentJoints(coords [4]IVec) Layout {
	layout := Layout{Coords: coords}
	for i := range coords {
		for j := i + 1; j < len(coords); j++ {
			d := coords[j].Sub(coords[i])
			if abs(d.X)+abs(d.Y) == 1 {
				layout.Joints = append(layout.Joints, JointSpec{A: i, B: j})
			}
		}
	}
	return layout
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// LayoutFor returns the layout of kind. The joint slice is shared and must
// not be modified.
func LayoutFor(kind Kind) Layout {
	return layouts[kind]
}

// RandomKind draws a kind uniformly.
func RandomKind(rng *rand.Rand) Kind {
	return Kind(rng.IntN(KindCount))
}

// Randomizer picks the kind of the next piece.
type Randomizer interface {
	Next() Kind
}

// UniformRandomizer draws every kind independently.
type UniformRandomizer struct {
	rng *rand.Rand
}

func NewUniformRandomizer(rng *rand.Rand) *UniformRandomizer {
	return &UniformRandomizer{rng: rng}
}

func (r *UniformRandomizer) Next() Kind {
	return RandomKind(r.rng)
}

// BagRandomizer deals all seven kinds in shuffled order before refilling.
type BagRandomizer struct {
	rng *rand.Rand
	bag []Kind
}

func NewBagRandomizer(rng *rand.Rand) *BagRandomizer {
	return &BagRandomizer{rng: rng}
}

func (r *BagRandomizer) Next() Kind {
	if len(r.bag) == 0 {
		r.bag = Kinds()
		r.rng.Shuffle(len(r.bag), func(i, j int) {
			r.bag[i], r.bag[j] = r.bag[j], r.bag[i]
		})
	}

	kind := r.bag[0]
	r.bag = r.bag[1:]
	return kind
}
