package phone

import "errors"

const (
	MsgInvalidNumber = "invalid phone number"
	MsgVOIPRejected  = "VOIP numbers are not allowed; use a mobile number"
	MsgNotNANP       = "must be a valid 10-digit US/Canada number"
	MsgSendFailed    = "failed to send, try again"
)

// DeliveryError is returned by a DeliveryGateway. Message is safe to show to the caller.
type DeliveryError struct {
	Message string
	// CallerFault is true when the number itself was rejected rather than the transport failing.
	CallerFault bool
	Err         error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

func rejected(msg string, err error) *DeliveryError {
	return &DeliveryError{Message: msg, CallerFault: true, Err: err}
}

func sendFailed(err error) *DeliveryError {
	return &DeliveryError{Message: MsgSendFailed, Err: err}
}

// AsDeliveryError reports whether err carries a DeliveryError.
func AsDeliveryError(err error) (*DeliveryError, bool) {
	var de *DeliveryError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
