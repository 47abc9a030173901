package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrSessionClosed = NewDomainError("SESSION_CLOSED", "Session is no longer writable")
	ErrSessionBusy   = NewDomainError("SESSION_BUSY", "Session outbound buffer is full")
	ErrNotIdentified = NewDomainError("NOT_IDENTIFIED", "Session has not identified itself")
	ErrNotAdmin      = NewDomainError("NOT_ADMIN", "Operation restricted to administrators")
)
