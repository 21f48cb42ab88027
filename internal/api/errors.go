package api

import "fmt"

// Kind classifies a failed backend call.
type Kind int

const (
	// KindNetwork means no response was received at all.
	KindNetwork Kind = iota
	// KindAuth means the backend rejected the credential (401/403).
	KindAuth
	// KindValidation means the backend rejected the request itself (other 4xx).
	KindValidation
	// KindServer covers 5xx and anything unclassifiable.
	KindServer
)

// Error is the single error value every failed cart call is normalized
// into. Message is user-facing; the UI shows it verbatim.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, 0 when no response was received
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func networkError(err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		Message: fmt.Sprintf("Network error: %v. Please check your connection.", err),
	}
}

func statusError(status int, serverMessage string) *Error {
	switch {
	case status == 401 || status == 403:
		return &Error{
			Kind:    KindAuth,
			Status:  status,
			Message: "Authentication error. Please ensure you are logged in.",
		}
	case status >= 400 && status < 500:
		msg := serverMessage
		if msg == "" {
			msg = "Request rejected by the server."
		}
		return &Error{Kind: KindValidation, Status: status, Message: msg}
	default:
		return &Error{
			Kind:    KindServer,
			Status:  status,
			Message: fmt.Sprintf("Server error: %d. Please try again later.", status),
		}
	}
}
