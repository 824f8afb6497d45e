package broadphase

import "github.com/shacklettbp/miwe/external"

// CandidateCollision is a broad-phase-accepted entity pair with a<b entity
// ordering, per spec.md §3's CandidateCollision data-model entry. PrimA and
// PrimB are left at -1: the broad-phase only ever tests whole-object world
// AABBs, so it cannot know which of an object's (possibly several)
// primitives actually overlap -- the narrow-phase dispatch resolves that by
// enumerating the pair's primitive cross product itself.
type CandidateCollision struct {
	A, B         external.EntityLoc
	PrimA, PrimB int32
}
