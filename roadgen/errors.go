package roadgen

import "errors"

// Errors
var (
	ErrUnsetLink        = errors.New("unset DCEL link")
	ErrForeignElement   = errors.New("element does not belong to this DCEL")
	ErrNotOnSameFace    = errors.New("nodes do not share a face")
	ErrSelfConnect      = errors.New("cannot connect a node to itself")
	ErrCycleTooShort    = errors.New("not enough nodes to make a cycle")
	ErrBrokenInvariant  = errors.New("DCEL invariant violated")
	ErrBadSnapshot      = errors.New("bad DCEL snapshot encoding")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrReadOnly         = errors.New("store is in read-only mode")
	ErrBadRecipe        = errors.New("bad growth recipe")
	ErrBadNodeID        = errors.New("bad node ID")
	ErrBadHalfEdgeID    = errors.New("bad half-edge ID")
	ErrBadFaceID        = errors.New("bad face ID")
	ErrBadConfig        = errors.New("bad config")
	ErrBadStoreParam    = errors.New("bad store param")
)
