package models

import "fmt"

// ErrorCode is the terminal disposition of one processed file. The numeric
// values are stored in the processed-files ledger and must not change.
type ErrorCode int

const (
	ErrorCodeUnknown           ErrorCode = -1
	ErrorCodeUnprocessed       ErrorCode = 0
	ErrorCodeSuccess           ErrorCode = 1
	ErrorCodePasswordProtected ErrorCode = -2
	ErrorCodeWrongVersion      ErrorCode = -3
	ErrorCodeARRA              ErrorCode = -4
	ErrorCodeDuplicateUser     ErrorCode = -5
	ErrorCodeFailedValidation  ErrorCode = -6
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCodeUnknown:           "unknown_error",
	ErrorCodeUnprocessed:       "unprocessed",
	ErrorCodeSuccess:           "successfully_processed",
	ErrorCodePasswordProtected: "password_protected",
	ErrorCodeWrongVersion:      "wrong_version",
	ErrorCodeARRA:              "arra",
	ErrorCodeDuplicateUser:     "duplicate_user",
	ErrorCodeFailedValidation:  "failed_validation",
}

// AllErrorCodes lists every code in ledger order.
func AllErrorCodes() []ErrorCode {
	return []ErrorCode{
		ErrorCodeSuccess,
		ErrorCodeUnprocessed,
		ErrorCodeUnknown,
		ErrorCodePasswordProtected,
		ErrorCodeWrongVersion,
		ErrorCodeARRA,
		ErrorCodeDuplicateUser,
		ErrorCodeFailedValidation,
	}
}

// String returns the snake_case name of the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("error_code(%d)", int(c))
}

// IsValid reports whether c is one of the defined codes.
func (c ErrorCode) IsValid() bool {
	_, ok := errorCodeNames[c]
	return ok
}

// ParseErrorCode maps a snake_case name back to its code.
func ParseErrorCode(name string) (ErrorCode, error) {
	for code, n := range errorCodeNames {
		if n == name {
			return code, nil
		}
	}
	return ErrorCodeUnknown, fmt.Errorf("unknown error code %q", name)
}
