package registration

import "fmt"

type ErrorReason string

const (
	REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL ErrorReason = "FAILED_TO_TRANSLATE_TO_DB_MODEL"
	REASON_FAILED_TO_WRITE                 ErrorReason = "FAILED_TO_WRITE"
	REASON_REGISTRATION_DOES_NOT_EXIST     ErrorReason = "REGISTRATION_DOES_NOT_EXIST"
	REASON_REGISTRATION_ALREADY_EXISTS     ErrorReason = "REGISTRATION_ALREADY_EXISTS"
	REASON_FAILED_TO_FETCH                 ErrorReason = "FAILED_TO_FETCH"
	REASON_INVALID_CURSOR                  ErrorReason = "INVALID_CURSOR"
	REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST ErrorReason = "ASSOCIATED_EVENT_DOES_NOT_EXIST"
	REASON_REGISTRATION_IS_CLOSED          ErrorReason = "REGISTRATION_IS_CLOSED"
	REASON_ORDER_CREATION_FAILED           ErrorReason = "ORDER_CREATION_FAILED"
	REASON_UNKNOWN_ORDER                   ErrorReason = "UNKNOWN_ORDER"
	REASON_SIGNATURE_INVALID               ErrorReason = "SIGNATURE_INVALID"
	REASON_SETTLEMENT_MISMATCH             ErrorReason = "SETTLEMENT_MISMATCH"
	REASON_ATTEMPT_ALREADY_RECORDED        ErrorReason = "ATTEMPT_ALREADY_RECORDED"
	REASON_TIMEOUT                         ErrorReason = "TIMEOUT"
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

func newRegistrationError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewFailedToWriteError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_WRITE, message, cause)
}

func NewFailedToTranslateToDBModelError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL, message, cause)
}

func NewRegistrationAlreadyExistsError(message string, cause error) *Error {
	return newRegistrationError(REASON_REGISTRATION_ALREADY_EXISTS, message, cause)
}

func NewRegistrationDoesNotExistsError(message string, cause error) *Error {
	return newRegistrationError(REASON_REGISTRATION_DOES_NOT_EXIST, message, cause)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_FETCH, message, cause)
}

func NewInvalidCursorError(message string, cause error) *Error {
	return newRegistrationError(REASON_INVALID_CURSOR, message, cause)
}

func NewAssociatedEventDoesNotExistError(message string, cause error) *Error {
	return newRegistrationError(REASON_ASSOCIATED_EVENT_DOES_NOT_EXIST, message, cause)
}

func NewRegistrationIsClosedError(message string) *Error {
	return newRegistrationError(REASON_REGISTRATION_IS_CLOSED, message, nil)
}

func NewOrderCreationError(message string, cause error) *Error {
	return newRegistrationError(REASON_ORDER_CREATION_FAILED, message, cause)
}

func NewUnknownOrderError(message string, cause error) *Error {
	return newRegistrationError(REASON_UNKNOWN_ORDER, message, cause)
}

func NewSignatureInvalidError(message string) *Error {
	return newRegistrationError(REASON_SIGNATURE_INVALID, message, nil)
}

func NewSettlementMismatchError(message string) *Error {
	return newRegistrationError(REASON_SETTLEMENT_MISMATCH, message, nil)
}

func NewAttemptAlreadyRecordedError(message string, cause error) *Error {
	return newRegistrationError(REASON_ATTEMPT_ALREADY_RECORDED, message, cause)
}

func NewTimeoutError(message string) *Error {
	return newRegistrationError(REASON_TIMEOUT, message, nil)
}
