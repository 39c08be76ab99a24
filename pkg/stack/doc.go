// Package stack ties the pieces of a node together.
//
// A Stack owns the model registry, the dispatcher, the binding coordinator
// and the protocol log of one node. Models are added with AddClient and the
// typed server helpers; the transport hands received buffers to Receive.
//
// NewAttached creates a stack on a Loopback port:
//
//	lb := transport.NewLoopback()
//	st, port, err := stack.NewAttached(cfg, lb)
//	...
//	lid, err := st.AddClient(model.KindOnOffClient, 0)
//	err = st.Transition(lid, 0x0002, model.TransitionRequest{State1: 1})
//	lb.Flush()
package stack
