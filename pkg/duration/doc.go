// Package duration implements the timers behind state transitions and replay
// windows.
//
// # Scheduler
//
// Components never call time.AfterFunc directly. They take a Scheduler, so a
// stack can run on the wall clock (RealScheduler) or on a manually advanced
// clock (ManualScheduler) that fires due callbacks deterministically on the
// caller's goroutine. Tests use the manual clock instead of sleeping.
//
// # Transition Timers
//
// A Manager tracks one timer per (model local index, TimerKind) pair: the
// delay before a transition starts and the transition itself. Setting a timer
// for a pair replaces the running one; there is no stacking. When a timer
// expires the expiry callback receives the pair and the value stored with it.
package duration
