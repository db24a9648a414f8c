// Package osc sends chatbox messages to a VRChat client over OSC/UDP.
package osc

import (
	"context"
	"fmt"

	goosc "github.com/hypebeast/go-osc/osc"

	"github.com/dexcom-osc-bridge/dexosc-go/pkg/discovery"
)

// ChatboxAddress is the VRChat OSC address that sets the chatbox text.
const ChatboxAddress = "/chatbox/input"

// Sender delivers chatbox messages to a fixed endpoint.
type Sender struct {
	endpoint discovery.Endpoint
	client   *goosc.Client
}

// NewSender creates a sender for ep.
func NewSender(ep discovery.Endpoint) *Sender {
	return &Sender{
		endpoint: ep,
		client:   goosc.NewClient(ep.IP, ep.Port),
	}
}

// Endpoint returns the destination.
func (s *Sender) Endpoint() discovery.Endpoint {
	return s.endpoint
}

// Send posts message to the chatbox immediately, bypassing the keyboard.
func (s *Sender) Send(ctx context.Context, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.client.Send(ChatboxMessage(message)); err != nil {
		return fmt.Errorf("osc send to %s: %w", s.endpoint, err)
	}
	return nil
}

// ChatboxMessage builds the /chatbox/input message: the text plus true to
// skip the in-game keyboard.
func ChatboxMessage(text string) *goosc.Message {
	return goosc.NewMessage(ChatboxAddress, text, true)
}
