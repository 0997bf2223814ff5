package payments

import "fmt"

type ErrorReason string

const (
	REASON_GATEWAY_UNREACHABLE ErrorReason = "GATEWAY_UNREACHABLE"
	REASON_ORDER_REJECTED      ErrorReason = "ORDER_REJECTED"
	REASON_MALFORMED_RESPONSE  ErrorReason = "MALFORMED_RESPONSE"
)

type Error struct {
	Reason  ErrorReason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newPaymentsError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewGatewayUnreachableError(message string, cause error) *Error {
	return newPaymentsError(REASON_GATEWAY_UNREACHABLE, message, cause)
}

func NewOrderRejectedError(message string, cause error) *Error {
	return newPaymentsError(REASON_ORDER_REJECTED, message, cause)
}

func NewMalformedResponseError(message string, cause error) *Error {
	return newPaymentsError(REASON_MALFORMED_RESPONSE, message, cause)
}
