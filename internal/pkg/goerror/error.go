package goerror

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound indicates that the requested resource could not be found.
	ErrNotFound = errors.New("resource not found")

	// ErrConfiguration indicates that a required configuration value is missing.
	ErrConfiguration = errors.New("missing configuration")
)

// Type classifies errors into high-level buckets used by the application.
type Type int

const (
	// TypeServer represents server-side failures.
	TypeServer Type = iota
	// TypeBusiness represents business rule violations.
	TypeBusiness
	// TypeValidation represents input validation failures.
	TypeValidation
)

// String returns the string representation of the error type.
func (t Type) String() string {
	switch t {
	case TypeValidation:
		return "ERROR_TYPE_VALIDATION"
	case TypeBusiness:
		return "ERROR_TYPE_BUSINESS"
	case TypeServer:
		return "ERROR_TYPE_SERVER"
	default:
		return "ERROR_TYPE_UNKNOWN"
	}
}

// Code is a stable identifier used for mapping errors to HTTP status codes.
type Code int

const (
	// CodeInternal represents an internal or unspecified error.
	CodeInternal Code = iota
	// CodeInvalidFormat indicates an undecodable request body.
	CodeInvalidFormat
	// CodeInvalidInput indicates a decodable but invalid request.
	CodeInvalidInput
	// CodeNotFound indicates that a referenced account does not exist.
	CodeNotFound
	// CodeExpired indicates the one-time code is expired or was never issued.
	CodeExpired
	// CodeMismatch indicates the submitted one-time code is wrong.
	CodeMismatch
	// CodeUnauthorized indicates authentication failure.
	CodeUnauthorized
	// CodeConfiguration indicates missing collaborator configuration.
	CodeConfiguration
	// CodeDependency indicates a failed call to the store, mail relay or another collaborator.
	CodeDependency
)

// String returns the string representation of the error code.
func (c Code) String() string {
	switch c {
	case CodeInvalidFormat:
		return "ERROR_CODE_INVALID_FORMAT"
	case CodeInvalidInput:
		return "ERROR_CODE_INVALID_INPUT"
	case CodeNotFound:
		return "ERROR_CODE_NOT_FOUND"
	case CodeExpired:
		return "ERROR_CODE_EXPIRED"
	case CodeMismatch:
		return "ERROR_CODE_MISMATCH"
	case CodeUnauthorized:
		return "ERROR_CODE_UNAUTHORIZED"
	case CodeConfiguration:
		return "ERROR_CODE_CONFIGURATION"
	case CodeDependency:
		return "ERROR_CODE_DEPENDENCY"
	default:
		return "ERROR_CODE_INTERNAL"
	}
}

// Error is a structured error used across the application.
//
// It can wrap an underlying error while also carrying a user-facing message,
// a high-level type, and a stable error code.
type Error struct {
	err     error
	msg     string
	errType Type
	code    Code
	fields  map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}

	if e.msg != "" {
		return e.msg
	}

	if e.errType == TypeValidation {
		return "Validation violation"
	}

	if e.errType == TypeBusiness {
		return "Logical business not meet with requirement"
	}

	return "Internal error"
}

// String returns a verbose representation of the error for debugging/logging.
func (e *Error) String() string {
	return fmt.Sprintf(
		"Error Type: %s, Code: %s, Message: %s, Underlying Error: %v",
		e.errType.String(),
		e.code.String(),
		e.msg,
		e.err,
	)
}

// Msg returns the user-facing error message, if set.
func (e *Error) Msg() string {
	return e.msg
}

// Type returns the high-level error type.
func (e *Error) Type() Type {
	return e.errType
}

// Code returns the stable error code.
func (e *Error) Code() Code {
	return e.code
}

// Fields returns validation errors (field to message map), if any.
func (e *Error) Fields() map[string]string {
	return e.fields
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

// StatusCode maps the error code to an HTTP status code.
//
// Every client-caused failure of the OTP flow is reported as 400, including
// unknown accounts and expired codes.
func (e *Error) StatusCode() int {
	switch e.code {
	case CodeInvalidFormat, CodeInvalidInput, CodeNotFound, CodeExpired, CodeMismatch:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func new(err error, msg string, et Type, code Code) error {
	return &Error{err: err, msg: msg, errType: et, code: code}
}

// NewServer creates a server-type error with the provided error.
func NewServer(err error) error {
	return new(err, "Internal server error", TypeServer, CodeInternal)
}

// NewBusiness creates a business-type error with the specified message and code.
func NewBusiness(msg string, code Code) error {
	return new(nil, msg, TypeBusiness, code)
}

// NewDependency reports a failed collaborator call. msg is sent to the client,
// err is kept for logs only.
func NewDependency(err error, msg string) error {
	return new(err, msg, TypeServer, CodeDependency)
}

// NewConfiguration reports missing or unusable collaborator configuration.
func NewConfiguration(err error) error {
	if err == nil {
		err = ErrConfiguration
	}
	return new(err, "Server configuration error", TypeServer, CodeConfiguration)
}

// NewInvalidInput creates a validation error with a user-facing message and
// optional field details given as key/value pairs.
func NewInvalidInput(msg string, kv ...string) error {
	e := &Error{msg: msg, errType: TypeValidation, code: CodeInvalidInput}
	if len(kv) == 0 || len(kv)%2 != 0 {
		return e
	}

	e.fields = make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		e.fields[kv[i]] = kv[i+1]
	}

	return e
}

// NewInvalidFormat creates a validation error for an invalid request body format.
func NewInvalidFormat(msgs ...string) error {
	if len(msgs) == 0 {
		return new(nil, "Invalid request body", TypeValidation, CodeInvalidFormat)
	}
	return new(nil, msgs[0], TypeValidation, CodeInvalidFormat)
}

// As reports the *Error inside err, if any.
func As(err error) (*Error, bool) {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	gerr, ok := As(err)
	return ok && gerr.code == code
}
