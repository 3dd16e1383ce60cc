package domain

import (
	"errors"
	"fmt"

	"basegraph.app/rendezvous/internal/model"
)

// ErrInvalidTransition is returned when a requested status change is not
// permitted for the given origin.
var ErrInvalidTransition = errors.New("invalid invitation transition")

// Origin identifies who is asking for a status change.
type Origin string

const (
	// OriginUserAction is the invitee responding directly.
	OriginUserAction Origin = "user_action"
	// OriginRemoteReconciliation is a response observed on the external calendar.
	OriginRemoteReconciliation Origin = "remote_reconciliation"
)

type edge struct {
	from model.InvitationStatus
	to   model.InvitationStatus
}

var allowedEdges = map[Origin]map[edge]struct{}{
	OriginUserAction: {
		{model.InvitationStatusPending, model.InvitationStatusAccepted}:  {},
		{model.InvitationStatusPending, model.InvitationStatusDeclined}:  {},
		{model.InvitationStatusAccepted, model.InvitationStatusDeclined}: {},
	},
	// a remote signal never moves an invitation out of a terminal status
	OriginRemoteReconciliation: {
		{model.InvitationStatusPending, model.InvitationStatusAccepted}: {},
		{model.InvitationStatusPending, model.InvitationStatusDeclined}: {},
	},
}

// Transition returns the status an invitation moves to, or ErrInvalidTransition.
// Self-edges are invalid so that replays are observable as no-ops.
func Transition(current, requested model.InvitationStatus, origin Origin) (model.InvitationStatus, error) {
	edges, ok := allowedEdges[origin]
	if !ok {
		return current, fmt.Errorf("%w: unknown origin %q", ErrInvalidTransition, origin)
	}
	if _, ok := edges[edge{from: current, to: requested}]; !ok {
		return current, fmt.Errorf("%w: %s -> %s (%s)", ErrInvalidTransition, current, requested, origin)
	}
	return requested, nil
}

// CanTransition reports whether Transition would succeed.
func CanTransition(current, requested model.InvitationStatus, origin Origin) bool {
	_, err := Transition(current, requested, origin)
	return err == nil
}

// MapRemoteResponse maps a provider attendee response onto a local status.
// Only an acceptance advances local state; tentative, declined and needsAction
// are reported as non-advancing.
func MapRemoteResponse(remote string) (model.InvitationStatus, bool) {
	if remote == "accepted" {
		return model.InvitationStatusAccepted, true
	}
	return "", false
}
