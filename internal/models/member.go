package models

// Member represents a person in the club registry.
type Member struct {
	// ID is the unique identifier for the member (UUID format).
	ID string

	// Name is the member's full name.
	Name string

	// Nickname is the handle members type on public RSVP pages.
	// Unique case-sensitively; lookups fall back to a case-insensitive match.
	Nickname string

	// Email is an optional contact address.
	Email string

	// Phone is an optional contact number.
	Phone string

	// PhotoURL is the public URL of the member's photo in the blob store, if any.
	PhotoURL string

	// Active members are billed monthly fees.
	Active bool

	// CreatedAt is the Unix timestamp when the member was registered.
	CreatedAt int64
}
