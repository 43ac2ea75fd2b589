package duel

import (
	"github.com/google/uuid"
)

// Session lifecycle states.
const (
	StatusWaiting    = "waiting"
	StatusStarting   = "starting"
	StatusInProgress = "in_progress"
	StatusFinished   = "finished"
	StatusCancelled  = "cancelled"
)

// PlayerInfo is one side of a duel. It is owned exclusively by the session
// that contains it and mutated only under the session lock.
type PlayerInfo struct {
	ID          uuid.UUID
	DisplayName string
	Avatar      string
	Score       int
	Ready       bool
}
