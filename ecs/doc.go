// Package ecs provides ECS adapters for trellis engine events.
//
// The primary adapter is [Bind], which bridges engine events (node
// gestures, drags, selection changes, backend rollbacks) into a [Donburi]
// world as typed events. Subscribe to the event types in your ECS systems
// to receive them.
//
// Usage:
//
//	handles := ecs.Bind(world, eng)
//	ecs.NodeClickEventType.Subscribe(world, onNodeClick)
//	// each tick, after eng.Update:
//	events.ProcessAllEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
