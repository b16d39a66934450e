// Package ecs bridges vantage to the [Donburi] ECS.
//
// [NewDonburiStore] publishes pointer interaction events into a world as
// typed events. Subscribe to [InteractionEventType] in your systems.
//
// [CandidateSource] collects entities carrying [BoundsComponent] as cull
// candidates, so a camera can cull ECS entities with the same predicate it
// uses for scene objects:
//
//	store := ecs.NewDonburiStore(world)
//	scene.SetEntityStore(store)
//
//	var src ecs.CandidateSource
//	var culler vantage.Culler[*ecs.Candidate]
//	visible, _ := culler.Cull(cam, src.Collect(world))
//
// Entity candidates use their own ID space, so keep a separate Culler and
// ignore set per camera for them.
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
