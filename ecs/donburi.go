// Package ecs provides ECS adapters for aspen.
package ecs

import (
	"github.com/aspen3d/aspen"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// PointerEventType is the Donburi event type for aspen pointer events.
// Subscribe to this in your ECS systems to receive move, hover, press,
// click, and wheel events.
var PointerEventType = events.NewEventType[aspen.Event]()

type donburiSink struct {
	world donburi.World
}

// NewDonburiSink creates an EventSink backed by a Donburi world. Pointer
// events are published to PointerEventType and can be consumed with
// events.Subscribe and ProcessEvents.
func NewDonburiSink(world donburi.World) aspen.EventSink {
	return &donburiSink{world: world}
}

func (s *donburiSink) EmitEvent(event aspen.Event) {
	PointerEventType.Publish(s.world, event)
}
