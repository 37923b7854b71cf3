package domain

// DomainError represents a domain-specific error
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

var (
	ErrPatientNotFound    = NewDomainError("patient not found")
	ErrExamNotFound       = NewDomainError("exam not found")
	ErrExamImageNotFound  = NewDomainError("exam image not found")
	ErrClinicSiteNotFound = NewDomainError("clinic site not found")
	ErrUserNotFound       = NewDomainError("user not found")
	ErrNoteNotFound       = NewDomainError("patient note not found")
	ErrReportNotFound     = NewDomainError("patient report not found")
)
