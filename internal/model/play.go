package model

// Play is a stage production that can be scheduled many times in
// different halls.  Actors and genres are referenced, not owned: the
// same actor may appear in any number of plays.
//
// Fields:
//  ID          – primary key identifier.
//  Title       – play title.
//  Description – free-form description text.
//  Actors      – cast of the play (loaded for detail views).
//  Genres      – genres the play belongs to (loaded for detail views).
type Play struct {
	ID          uint64  // plays.id
	Title       string  // plays.title
	Description string  // plays.description
	Actors      []Actor // via play_actors
	Genres      []Genre // via play_genres
}

// Actor is a performer that can be attached to plays.
type Actor struct {
	ID        uint64 // actors.id
	FirstName string // actors.first_name
	LastName  string // actors.last_name
}

// FullName joins first and last name the way list views display actors.
func (a *Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Genre is a named category a play can belong to.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
}
