package domain

// ErrorKind classifies a domain error so the transport layer can pick a status code.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindNotFound
	KindAuth
	KindForbidden
	KindConflict
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a client-facing error. Message is safe to return to the caller.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Signup / login errors
var (
	ErrMissingFields      = newError(KindValidation, "Missing required fields")
	ErrInvalidName        = newError(KindValidation, "Name must be between 1 and 100 characters")
	ErrInvalidEmail       = newError(KindValidation, "Email is not valid")
	ErrInvalidUsername    = newError(KindValidation, "Username must be between 1 and 20 characters")
	ErrInvalidPassword    = newError(KindValidation, "Password must be between 6 and 100 characters")
	ErrUsernameTaken      = newError(KindConflict, "Username already in use")
	ErrEmailTaken         = newError(KindConflict, "Email already in use")
	ErrInvalidIdentifier  = newError(KindAuth, "Invalid email or username")
	ErrIncorrectPassword  = newError(KindAuth, "Incorrect password")
	ErrInvalidCredentials = newError(KindAuth, "Invalid credentials")
	ErrInvalidToken       = newError(KindAuth, "Invalid token")
)

// Profile errors
var (
	ErrUserNotFound  = newError(KindNotFound, "User not found")
	ErrForbidden     = newError(KindForbidden, "You can only edit your own profile")
	ErrInvalidAvatar = newError(KindValidation, "Only images (jpg, jpeg, png, gif, webp) are allowed")
	ErrAvatarTooBig  = newError(KindValidation, "Avatar image is too large")
)

// Note errors
var (
	ErrMissingTitleOrContent = newError(KindValidation, "Missing title or content")
	ErrInvalidTitle          = newError(KindValidation, "Title must be between 1 and 200 characters")
	ErrInvalidContent        = newError(KindValidation, "Content must be between 1 and 10000 characters")
	ErrInvalidColor          = newError(KindValidation, "Invalid color")
	ErrInvalidPriority       = newError(KindValidation, "Priority must be non-negative")
	ErrInvalidOrder          = newError(KindValidation, "Order must list each of your notes exactly once")
	ErrEmptyOrder            = newError(KindValidation, "Order must contain at least one note")
	ErrNoteNotFound          = newError(KindNotFound, "Note not found")
)

// ErrPersistence is returned when the store fails. The cause is logged, never returned.
var ErrPersistence = newError(KindPersistence, "Internal server error")
