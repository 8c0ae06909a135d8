package main

import (
	"math/rand/v2"

	"github.com/plus3/tumbletris/tetris"
)

// script stands in for a player: every holdFrames it picks a random set of
// actions and holds them until the next pick.
type script struct {
	rng        *rand.Rand
	holdFrames int
	frame      int
	held       [4]bool
}

func newScript(seed uint64, holdFrames int) *script {
	if holdFrames <= 0 {
		holdFrames = 1
	}
	return &script{
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		holdFrames: holdFrames,
	}
}

// Advance moves the script forward one frame.
func (s *script) Advance() {
	if s.frame%s.holdFrames == 0 {
		for i := range s.held {
			// hold each action a quarter of the time
			s.held[i] = s.rng.IntN(4) == 0
		}
	}
	s.frame++
}

func (s *script) Held(action tetris.Action) bool {
	if int(action) < 0 || int(action) >= len(s.held) {
		return false
	}
	return s.held[action]
}
