// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
)

// ErrCampaignNotFound is returned when the campaign page does not exist
// or the integration cannot see it.
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %s not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrMalformedPayload is returned for webhook and invocation payloads
// that cannot be decoded.
type ErrMalformedPayload struct {
	Reason string
	Err    error
}

func (e *ErrMalformedPayload) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed payload: %s: %v", e.Reason, e.Err)
	}
	return "malformed payload: " + e.Reason
}

func (e *ErrMalformedPayload) Unwrap() error { return e.Err }

func NewMalformedPayload(reason string, err error) error {
	return &ErrMalformedPayload{Reason: reason, Err: err}
}

// ErrUnknownBackend is returned by factories for unsupported backend names.
var ErrUnknownBackend = errors.New("unknown backend")
