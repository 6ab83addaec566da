// Package ecs provides ECS adapters for aspen's pointer event system.
//
// The primary adapter is [NewDonburiSink], which bridges aspen pointer
// events (move, over, out, down, up, click, wheel) into a [Donburi] world
// as typed events. Subscribe to [PointerEventType] in your ECS systems to
// receive them.
//
// Usage:
//
//	sink := ecs.NewDonburiSink(world)
//	state.SetEventSink(sink)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
