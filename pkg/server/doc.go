// Package server implements the Generic OnOff, Generic Level and Light
// Lightness servers.
//
// A server answers Get with a Status and applies acknowledged and
// unacknowledged Sets. Retransmitted sets, recognised by source address and
// transaction identifier, are not applied again; an acknowledged
// retransmission still gets a Status.
//
// Sets carrying a transition time or delay move the state on timers from
// the duration package. While a transition is pending or running, Status
// messages take the long form with the target and the remaining time.
//
// Bind groups OnOff and Level servers under a Lightness server. A bound
// server routes its sets through the binding group; the Lightness server
// maps each request onto Lightness Actual and derives every member's
// target from it:
//
//	OnOff 0      -> Actual 0
//	OnOff 1      -> Default, or Last when Default is 0
//	Level l      -> Actual l + 32768
//	Actual a     -> OnOff a > 0, Level a - 32768
package server
