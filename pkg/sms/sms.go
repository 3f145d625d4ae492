// Package sms sends text messages through AWS SNS.
package sms

import (
	"context"
)

// Result is the gateway's answer for a single send attempt.
type Result struct {
	Success   bool
	MessageID string
	// OptedOut is set when the provider reports the destination number
	// as having opted out of messages.
	OptedOut bool
}

// Gateway sends a message to a phone number.
type Gateway interface {
	Send(ctx context.Context, phone, message string) (*Result, error)
}
