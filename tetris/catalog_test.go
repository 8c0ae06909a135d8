package tetris_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plus3/tumbletris/tetris"
)

func TestLayouts(t *testing.T) {
	for _, kind := range tetris.Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			layout := tetris.LayoutFor(kind)
			require.Len(t, layout.Coords, 4)

			seen := map[tetris.IVec]bool{}
			for _, c := range layout.Coords {
				assert.False(t, seen[c], "duplicate cell %v", c)
				seen[c] = true
			}

			require.NotEmpty(t, layout.Joints)
			for _, j := range layout.Joints {
				require.True(t, j.A >= 0 && j.A < 4, "joint index %d", j.A)
				require.True(t, j.B >= 0 && j.B < 4, "joint index %d", j.B)
				require.NotEqual(t, j.A, j.B)

				d := layout.Coords[j.B].Sub(layout.Coords[j.A])
				assert.Equal(t, 1, abs(d.X)+abs(d.Y), "joint %v must join neighbours", j)
			}

			assert.True(t, connected(layout), "joints must hold the piece together")
			assert.Contains(t, layout.Coords, tetris.IVec{}, "pivot block at the origin")
		})
	}
}

func TestLayoutsAreDistinct(t *testing.T) {
	shapes := map[[4]tetris.IVec]tetris.Kind{}
	for _, kind := range tetris.Kinds() {
		coords := tetris.LayoutFor(kind).Coords
		other, dup := shapes[coords]
		assert.False(t, dup, "%s and %s share a layout", kind, other)
		shapes[coords] = kind
	}
}

func TestJointCounts(t *testing.T) {
	want := map[tetris.Kind]int{
		tetris.KindI: 3,
		tetris.KindO: 4,
		tetris.KindT: 3,
		tetris.KindJ: 3,
		tetris.KindL: 3,
		tetris.KindS: 3,
		tetris.KindZ: 3,
	}
	for kind, n := range want {
		assert.Len(t, tetris.LayoutFor(kind).Joints, n, kind.String())
	}
}

func TestKindString(t *testing.T) {
	var names []string
	for _, kind := range tetris.Kinds() {
		names = append(names, kind.String())
	}
	assert.Equal(t, []string{"I", "O", "T", "J", "L", "S", "Z"}, names)
	assert.Equal(t, "?", tetris.Kind(42).String())
}

func TestRandomKindIsUniform(t *testing.T) {
	const draws = 70_000
	rng := rand.New(rand.NewPCG(1, 2))

	var counts [tetris.KindCount]int
	for range draws {
		kind := tetris.RandomKind(rng)
		require.Less(t, int(kind), tetris.KindCount)
		counts[kind]++
	}

	expected := float64(draws) / tetris.KindCount
	chi2 := 0.0
	for kind, n := range counts {
		assert.NotZero(t, n, tetris.Kind(kind).String())
		d := float64(n) - expected
		chi2 += d * d / expected
	}

	// 6 degrees of freedom, p = 0.001
	assert.Less(t, chi2, 22.458, "counts %v", counts)
}

func TestBagRandomizer(t *testing.T) {
	bag := tetris.NewBagRandomizer(rand.New(rand.NewPCG(7, 7)))

	for round := 0; round < 50; round++ {
		seen := map[tetris.Kind]int{}
		for range tetris.KindCount {
			seen[bag.Next()]++
		}
		require.Len(t, seen, tetris.KindCount, "round %d", round)
		for kind, n := range seen {
			require.Equal(t, 1, n, "round %d kind %s", round, kind)
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func connected(layout tetris.Layout) bool {
	adj := map[int][]int{}
	for _, j := range layout.Joints {
		adj[j.A] = append(adj[j.A], j.B)
		adj[j.B] = append(adj[j.B], j.A)
	}

	visited := map[int]bool{0: true}
	stack := []int{0}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range adj[n] {
			if !visited[m] {
				visited[m] = true
				stack = append(stack, m)
			}
		}
	}
	return len(visited) == len(layout.Coords)
}
