// Package realtime provides a tick-based deterministic runtime for tickfsm
// machines.
//
// A core.Machine is single-threaded and driven by explicit calls. The
// Runtime owns one machine on a single goroutine and drives it from a fixed
// time step:
//   - External events are batched and dispatched at tick boundaries
//   - Ordering is deterministic: priority first, then submission sequence
//   - Timers advance by exactly the tick rate on every tick
//   - Events enqueued by actions are drained before the tick ends
//
// # Example Usage
//
//	m, _ := core.NewMachine(def)
//	rt := realtime.NewRuntime(m, realtime.Config{
//		TickRate: 16667 * time.Microsecond, // 60 FPS
//	})
//	if err := rt.Start(ctx); err != nil {
//		return err
//	}
//	defer rt.Stop()
//	rt.SendEvent(primitives.NewEvent("jump", nil))
//
// # Tick phases
//
//  1. Collect the batch and sort it (priority desc, sequence asc)
//  2. Dispatch each event; ErrNoTransition is logged at debug level
//  3. Tick the timers by the elapsed time and dispatch the triggered ones
//  4. Drain the machine's event queue
//  5. Publish the state vector snapshot read by CurrentStates
//
// # Deterministic stepping
//
// Step runs the same phases synchronously with a caller-chosen elapsed time,
// which makes timer scenarios reproducible in tests without sleeping:
//
//	rt := realtime.NewRuntime(m, realtime.Config{})
//	for range 9 {
//		rt.Step(50 * time.Millisecond)
//	}
//
// # Use Cases
//
//   - Game engines (60 FPS game logic)
//   - Embedded style control loops with fixed time-step
//   - Testing/debugging (reproducible scenarios)
package realtime
