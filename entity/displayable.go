package entity

// Displayable is the common surface the search engine and list views need
// from users and events.
type Displayable interface {
	ID() int64
	Name() string
	Subtitle() string
	Location() Position
}

var (
	_ Displayable = (*User)(nil)
	_ Displayable = (*Event)(nil)
)
