package model

import "time"

// Performance is a scheduled showing of a play in a hall at a specific
// time.  Many performances may share a play or a hall.  The number of
// available seats is never stored on the performance; it is computed
// from the hall capacity and the tickets sold at read time.
//
// Fields:
//  ID       – primary key identifier.
//  PlayID   – play being performed.
//  HallID   – hall the performance takes place in.
//  ShowTime – when the performance starts (UTC).
type Performance struct {
	ID       uint64    // performances.id
	PlayID   uint64    // performances.play_id
	HallID   uint64    // performances.hall_id
	ShowTime time.Time // performances.show_time
}
