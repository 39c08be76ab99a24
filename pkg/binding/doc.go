// Package binding coordinates transitions across models bound in a group.
//
// Models whose states are bound (for example Light Lightness Actual, Generic
// Level and Generic OnOff on one element) must move together. One model of
// the group is the main model; it arbitrates every transition request:
//
//	Idle ──RequestTransition──► Requested ──Accept──► Approved ──Start──► InProgress
//	  ▲                             │                    │                    │
//	  └──────────Reject─────────────┴────────Reject──────┘                    │
//	  └────────────────────────────────End────────────────────────────────────┘
//
// A group runs at most one transition at a time. A request while the group
// is not Idle fails with ErrBusy and leaves the group untouched; nothing is
// queued.
package binding
