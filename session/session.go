// Copyright 2026 The Hibari Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/hibari/ubf-thrift/bridge"
	"github.com/hibari/ubf-thrift/contract"
	"github.com/hibari/ubf-thrift/term"
	"github.com/hibari/ubf-thrift/thrift"
)

// EnvelopeName is the message name marking a term wrapped for
// transport. Messages with any other name pass through the codec as
// plain Thrift.
const EnvelopeName = "$UBF"

// Protocol metadata queried by the session layer to route traffic to
// this codec.

// ProtoVersion identifies the protocol revision.
func ProtoVersion() string { return "tbf1.0" }

// ProtoDriver identifies the transport driver for this codec.
func ProtoDriver() string { return "tbf_driver" }

// ProtoPacketType identifies the packet framing variant.
func ProtoPacketType() int { return 0 }

// Side is the session's end of the connection. It selects the message
// type used when wrapping outbound terms: clients call, servers reply.
type Side int

const (
	Client Side = iota
	Server
)

func (s Side) String() string {
	switch s {
	case Client:
		return "client"
	case Server:
		return "server"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// Role is the per-session codec configuration: which side this end
// plays and whether messages travel length-prefixed. Framing itself is
// applied by the transport driver (see WriteFrame and ReadFrame); the
// codec's byte stream is identical either way.
type Role struct {
	Side   Side
	Framed bool
}

// Event marks a value traveling as an asynchronous event rather than
// a call or reply. On the wire it is a ONEWAY "$UBF" message; the
// direction (event-in toward the server, event-out toward the client)
// follows from which side sent it.
type Event struct {
	Value term.Term
}

// Inbound is one unit delivered by Codec.Feed: exactly one of a raw
// pass-through message, an unwrapped term, or an event.
type Inbound struct {
	Message *thrift.Message
	Term    term.Term
	Event   *Event
}

// Codec wraps and unwraps values for one session. It owns a resumable
// Thrift decoder internally; callers feed it transport bytes and
// receive complete inbound units in stream order. A Codec is
// single-owner, like the decoder it wraps.
type Codec struct {
	// Role selects wrapping behavior. The zero value is an unframed
	// client.
	Role Role

	// Registry resolves record schemas for the term bridge. May be nil.
	Registry contract.Registry

	// Atoms gates atom admission. May be nil; see bridge.Bridge.
	Atoms *term.AtomTable

	// Safe forbids materializing unknown atom names on decode.
	Safe bool

	// Version selects the outbound message header variant. The zero
	// value emits legacy headers.
	Version thrift.Version

	// DecoderOptions bounds the internal decoder. The zero value uses
	// the thrift package defaults.
	DecoderOptions thrift.DecoderOptions

	// Logger receives structured debug output. If nil, slog.Default()
	// is used.
	Logger *slog.Logger

	decoder   *thrift.Decoder
	remainder []byte
}

// logger returns the configured logger or the default.
func (c *Codec) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Codec) bridge() *bridge.Bridge {
	return &bridge.Bridge{Registry: c.Registry, Atoms: c.Atoms, Safe: c.Safe}
}

// wrapType is the message type for outbound wrapped terms.
func (c *Codec) wrapType() thrift.MessageType {
	if c.Role.Side == Server {
		return thrift.MessageReply
	}
	return thrift.MessageCall
}

// Encode serializes one outbound value. A *thrift.Message passes
// through; a term.Term wraps into a "$UBF" call or reply; an Event
// (or *Event) wraps into a "$UBF" oneway. Anything else is an error.
func (c *Codec) Encode(value any) (net.Buffers, error) {
	switch v := value.(type) {
	case *thrift.Message:
		return thrift.EncodeMessageVersion(v, c.Version)
	case Event:
		return c.encodeWrapped(v.Value, thrift.MessageOneway)
	case *Event:
		return c.encodeWrapped(v.Value, thrift.MessageOneway)
	case term.Term:
		return c.encodeWrapped(v, c.wrapType())
	}
	return nil, fmt.Errorf("session: encode: unsupported value type %T", value)
}

func (c *Codec) encodeWrapped(value term.Term, messageType thrift.MessageType) (net.Buffers, error) {
	envelope, err := c.bridge().Encode(value)
	if err != nil {
		return nil, err
	}
	message := &thrift.Message{
		Name:    EnvelopeName,
		Type:    messageType,
		SeqID:   0,
		Payload: *envelope,
	}
	return thrift.EncodeMessageVersion(message, c.Version)
}

// Feed consumes transport bytes and returns the next complete inbound
// unit, or nil when more input is required. Bytes trailing a message
// are retained and consumed first on the next call, so a caller can
// drain a burst of messages with Feed(nil) until it returns nil. A
// decode error is fatal for the session: the caller discards the
// Codec.
func (c *Codec) Feed(data []byte) (*Inbound, error) {
	feed := data
	if c.decoder == nil {
		c.decoder = thrift.NewDecoder(c.DecoderOptions)
		if len(c.remainder) > 0 {
			feed = append(c.remainder, data...)
			c.remainder = nil
		}
	}

	result, err := c.decoder.Feed(feed)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, nil
	}
	c.remainder = result.Remainder
	c.decoder = nil
	return c.deliver(result)
}

// deliver routes a decoded message: "$UBF" envelopes unwrap through
// the bridge, everything else passes through verbatim.
func (c *Codec) deliver(result *thrift.Result) (*Inbound, error) {
	message := result.Message
	if message.Name != EnvelopeName {
		return &Inbound{Message: message}, nil
	}

	value, err := c.bridge().DecodeWire(&message.Payload)
	if err != nil {
		return nil, err
	}

	c.logger().Debug("unwrapped term envelope",
		"message_type", message.Type.String(),
		"version", uint16(result.Version),
	)

	switch message.Type {
	case thrift.MessageOneway:
		return &Inbound{Event: &Event{Value: value}}, nil
	case thrift.MessageCall, thrift.MessageReply:
		return &Inbound{Term: value}, nil
	}
	// An exception envelope has no term-level meaning; surface the
	// message itself.
	return &Inbound{Message: message}, nil
}
