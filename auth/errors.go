package auth

// Error codes reported by identity providers. Each maps to a fixed
// user-facing message; anything unrecognized presents the generic one.
const (
	CodeInvalidEmail      = "invalid-email"
	CodeUserDisabled      = "user-disabled"
	CodeUserNotFound      = "user-not-found"
	CodeWrongPassword     = "wrong-password"
	CodeEmailAlreadyInUse = "email-already-in-use"
	CodeWeakPassword      = "weak-password"
	CodeUnknown           = "unknown"
)

var messages = map[string]string{
	CodeInvalidEmail:      "The email address is not valid",
	CodeUserDisabled:      "This account has been disabled",
	CodeUserNotFound:      "No account is registered with this email address",
	CodeWrongPassword:     "The password is incorrect",
	CodeEmailAlreadyInUse: "This email address is already in use",
	CodeWeakPassword:      "The password is too weak (at least 6 characters required)",
	CodeUnknown:           "An unexpected error occurred. Please try again",
}

// Error is a provider failure with a stable code.
type Error struct {
	Code string
}

func (e *Error) Error() string { return "auth: " + e.Code }

// Message returns the user-facing text for the error code.
func (e *Error) Message() string {
	if msg, ok := messages[e.Code]; ok {
		return msg
	}
	return messages[CodeUnknown]
}

func NewError(code string) *Error {
	if _, ok := messages[code]; !ok {
		code = CodeUnknown
	}
	return &Error{Code: code}
}
