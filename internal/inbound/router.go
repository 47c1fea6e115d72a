// internal/inbound/router.go
package inbound

import (
	"net"

	"github.com/hypebeast/go-osc/osc"
)

// Message is one decoded control message.
type Message struct {
	Address string
	Args    []interface{}
	From    net.Addr // nil when unknown
}

// HandlerFunc handles one message on the control loop.
type HandlerFunc func(msg Message)

// Router maps message names to handlers.
// Names without a handler go to the default handler.
// Plain lookup table, no pattern matching.
type Router struct {
	handlers map[string]HandlerFunc
	fallback HandlerFunc
}

func NewRouter() *Router {
	return &Router{handlers: make(map[string]HandlerFunc)}
}

// Map registers h for address, replacing any previous handler.
func (r *Router) Map(address string, h HandlerFunc) {
	r.handlers[address] = h
}

// SetDefault registers the handler for unmapped names.
func (r *Router) SetDefault(h HandlerFunc) {
	r.fallback = h
}

// mapped reports whether address has a handler.
func (r *Router) mapped(address string) bool {
	_, ok := r.handlers[address]
	return ok
}

// Route dispatches msg. Returns false if it went to the default handler
// (or was dropped because none is set).
func (r *Router) Route(msg Message) bool {
	if h, ok := r.handlers[msg.Address]; ok {
		h(msg)
		return true
	}
	if r.fallback != nil {
		r.fallback(msg)
	}
	return false
}

// FromPacket flattens an OSC packet into messages, bundles depth-first
// in their encoded order.
func FromPacket(p osc.Packet, from net.Addr) []Message {
	switch v := p.(type) {
	case *osc.Message:
		return []Message{{Address: v.Address, Args: v.Arguments, From: from}}
	case *osc.Bundle:
		var out []Message
		for _, m := range v.Messages {
			out = append(out, FromPacket(m, from)...)
		}
		for _, b := range v.Bundles {
			out = append(out, FromPacket(b, from)...)
		}
		return out
	default:
		return nil
	}
}
