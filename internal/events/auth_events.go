package events

// Event types published by the account lifecycle
const (
	UserRegistered = "user.registered"
	UserLoggedIn   = "user.logged_in"
	AccountDeleted = "account.deleted"
)

// UserRegisteredEvent is emitted after a new account is stored
type UserRegisteredEvent struct {
	BaseEvent
	Email string `json:"email"`
}

// NewUserRegisteredEvent creates a UserRegisteredEvent
func NewUserRegisteredEvent(userID, email string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: newBase(UserRegistered, userID),
		Email:     email,
	}
}

// UserLoggedInEvent is emitted after a successful login
type UserLoggedInEvent struct {
	BaseEvent
}

// NewUserLoggedInEvent creates a UserLoggedInEvent
func NewUserLoggedInEvent(userID string) *UserLoggedInEvent {
	return &UserLoggedInEvent{BaseEvent: newBase(UserLoggedIn, userID)}
}

// AccountDeletedEvent is emitted after a user and their profile are removed.
// Handle is empty when the user had no profile.
type AccountDeletedEvent struct {
	BaseEvent
	Handle string `json:"handle,omitempty"`
}

// NewAccountDeletedEvent creates an AccountDeletedEvent
func NewAccountDeletedEvent(userID, handle string) *AccountDeletedEvent {
	return &AccountDeletedEvent{
		BaseEvent: newBase(AccountDeleted, userID),
		Handle:    handle,
	}
}
