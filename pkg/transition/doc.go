// Package transition implements the Bluetooth Mesh transition time and delay
// encodings used by every state-changing model message.
//
// # Transition Time
//
// A transition time is carried as one byte:
//
//	 7   6   5                   0
//	+-------+---------------------+
//	|  res  |   number of steps   |
//	+-------+---------------------+
//
// The resolution selects the step duration:
//
//	0b00  100 milliseconds
//	0b01  1 second
//	0b10  10 seconds
//	0b11  10 minutes
//
// Step counts 0-62 are valid, 63 means "unknown". The API works in
// milliseconds; Pack picks the finest resolution able to represent the
// duration in at most 62 steps and saturates at 62 steps of 10 minutes.
//
// # Delay
//
// Message execution delay is one byte in 5 millisecond units.
package transition
