package model

import "time"

// Cohort is a named enrollment scope. IDNumber is the stable external
// identifier referring systems and configuration use; ID is internal.
type Cohort struct {
	ID        int64     `db:"id"`
	IDNumber  string    `db:"idnumber"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Course is a destination the hand-off may route to after login.
type Course struct {
	ID        int64     `db:"id"`
	ShortName string    `db:"shortname"`
	FullName  string    `db:"fullname"`
	CreatedAt time.Time `db:"created_at"`
}
