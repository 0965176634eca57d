package dcel

const (
	arenaBlockShift = 8
	arenaBlockSize  = 1 << arenaBlockShift
	arenaBlockMask  = arenaBlockSize - 1
)

// arena is an append-only store of T.  Elements live in fixed-size blocks that are
// never reallocated, so a *T handed out by alloc() or at() stays valid as the arena grows.
type arena[T any] struct {
	blocks [][]T
	count  int
}

func (a *arena[T]) alloc() (*T, int) {
	idx := a.count
	blk := idx >> arenaBlockShift
	if blk == len(a.blocks) {
		a.blocks = append(a.blocks, make([]T, arenaBlockSize))
	}
	a.count++
	return &a.blocks[blk][idx&arenaBlockMask], idx
}

func (a *arena[T]) at(idx int) *T {
	return &a.blocks[idx>>arenaBlockShift][idx&arenaBlockMask]
}

func (a *arena[T]) inRange(idx int) bool {
	return idx >= 0 && idx < a.count
}

func (a *arena[T]) len() int {
	return a.count
}
