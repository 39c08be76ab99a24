// Package client implements the client role of the Generic and Lighting
// mesh models.
//
// Each client encodes get, set and transition requests into access messages
// and decodes the statuses servers send back, reporting them through a
// model.Indicator.
//
// # Message Length
//
// Set messages carrying a transition have a short form (state and TID) and a
// long form that adds the packed transition time and the delay. The long form
// is used when the request asks for it or has a non-zero transition time or
// delay. Buffers are allocated with exactly the chosen length.
//
// Status messages with optional target and remaining time are accepted only
// at their minimum length or at exactly their maximum length. Any other
// length is malformed and the message is dropped.
//
// # Errors
//
// Out-of-range selectors and kinds fail with wire.ErrInvalidParam before any
// buffer is allocated. Allocation failures are returned as is.
package client
