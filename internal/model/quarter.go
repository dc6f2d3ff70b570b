package model

import (
	"fmt"
	"time"
)

// QuarterKey identifies a fiscal quarter derived from a statement's reference date.
// Quarters are totally ordered by Key(), which enables simple successor and
// predecessor arithmetic across year boundaries.
type QuarterKey struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter"`
}

// Key returns the integer-ordered encoding year*4 + quarter.
func (q QuarterKey) Key() int {
	return q.Year*4 + q.Quarter
}

// String formats the quarter as "2023T1", the notation used in run keys.
func (q QuarterKey) String() string {
	return fmt.Sprintf("%dT%d", q.Year, q.Quarter)
}

// QuarterOf derives the fiscal quarter from a calendar date:
// year = calendar year, quarter = ceil(month/3).
func QuarterOf(date time.Time) QuarterKey {
	return QuarterKey{
		Year:    date.Year(),
		Quarter: (int(date.Month())-1)/3 + 1,
	}
}

// QuarterFromKey inverts Key. A remainder of zero means Q4 of the previous year.
func QuarterFromKey(key int) QuarterKey {
	year := key / 4
	quarter := key % 4
	if quarter == 0 {
		year--
		quarter = 4
	}
	return QuarterKey{Year: year, Quarter: quarter}
}
