package views

import (
	"context"

	"github.com/AdamBeresnev/olympics-draws/internal/bracket"
	users "github.com/AdamBeresnev/olympics-draws/internal/user"
)

func GetActor(ctx context.Context) *users.Actor {
	actor, _ := users.ActorFromContext(ctx)
	return actor
}

func participantName(ref *bracket.ParticipantRef) string {
	if ref == nil {
		return "TBD"
	}
	return string(*ref)
}
