// Package model implements the model environment registry and the opcode
// dispatch contract shared by every mesh model.
//
// # Registration
//
// A node hosts elements, and each element hosts model instances:
//
//	Node (0x0001)
//	├── Element 0
//	│   ├── Generic OnOff Server   (lid 0)
//	│   ├── Generic Level Server   (lid 1)
//	│   └── Light Lightness Server (lid 2)
//	└── Element 1
//	    └── Light CTL Client       (lid 3)
//
// Registering a model id on an element yields a LocalIndex, a small handle
// unique per instance for the lifetime of the Registry. BindState then
// attaches the concrete implementation. Instances are never deregistered,
// so a LocalIndex is never reused; Close tears the whole registry down.
//
// # Dispatch Contract
//
// Every instance implements Model: an opcode allow-list check and a receive
// handler. The Dispatcher runs the allow-list first and drops rejected
// messages without telling the application.
//
// Clients add capabilities by implementing Getter, Setter and Transitioner.
// An absent capability is an absent method set, checked with a type
// assertion; callers never see a nil callback.
//
// # Indications
//
// Decoded state travels to the application through an Indicator. Calls are
// fire-and-forget.
package model
