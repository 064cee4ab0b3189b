package actions

import (
	"github.com/google/uuid"

	"github.com/rendis/actionrules/internal/requirements"
)

// Enabler permits an action when both of its requirement vectors hold:
// ActorReqs against the actor and TargetReqs against the target.
type Enabler struct {
	ID         uuid.UUID
	Action     ActionID
	ActorReqs  requirements.Vector
	TargetReqs requirements.Vector

	// Name is an optional label taken from the ruleset.
	Name string
}

// NewEnabler creates an enabler with a fresh id.
func NewEnabler(action ActionID, actorReqs, targetReqs requirements.Vector) *Enabler {
	return &Enabler{
		ID:         uuid.New(),
		Action:     action,
		ActorReqs:  actorReqs,
		TargetReqs: targetReqs,
	}
}

// Label returns Name when set, otherwise the id.
func (e *Enabler) Label() string {
	if e.Name != "" {
		return e.Name
	}
	return e.ID.String()
}
