package ecs

import (
	"github.com/phanxgames/vantage"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for vantage pointer events.
var InteractionEventType = events.NewEventType[vantage.InteractionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Events are queued and delivered by ProcessEvents.
func NewDonburiStore(world donburi.World) vantage.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event vantage.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}
