package models

import "errors"

// Rejected-precondition errors. The caller's assumption was wrong; these are
// surfaced verbatim and never retried.
var (
	ErrDuplicatePairing = errors.New("duplicate pairing: member already paired this cycle or pair matched before")
	ErrSelfPairing      = errors.New("self pairing: a member cannot be matched with themselves")
	ErrNotParticipant   = errors.New("not a participant of this match")
	ErrAlreadyDecided   = errors.New("decision already recorded for this member")
	ErrMatchClosed      = errors.New("match is closed: no further decisions permitted")
	ErrInvalidDecision  = errors.New("decision must be accept or pass")
)

// Not-found and availability errors.
var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrStoreUnavailable = errors.New("match store unavailable")
)
