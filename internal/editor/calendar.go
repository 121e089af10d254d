package editor

import "time"

// Cell is one day slot in the calendar grid. Cells that belong to the
// previous or next month have InMonth false.
type Cell struct {
	Day     int
	InMonth bool
}

const (
	gridWeeks = 6
	gridDays  = gridWeeks * 7
)

func DaysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Grid lays out the cursor month as six Sunday-first weeks, padded with
// filler days from the adjacent months.
func (e *Editor) Grid() []Cell {
	return MonthGrid(e.cursorMonth, e.cursorYear)
}

func MonthGrid(month time.Month, year int) []Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	lead := int(first.Weekday())
	days := DaysIn(month, year)
	prevDays := DaysIn(month-1, year)

	cells := make([]Cell, 0, gridDays)
	for i := lead; i > 0; i-- {
		cells = append(cells, Cell{Day: prevDays - i + 1})
	}
	for d := 1; d <= days; d++ {
		cells = append(cells, Cell{Day: d, InMonth: true})
	}
	for d := 1; len(cells) < gridDays; d++ {
		cells = append(cells, Cell{Day: d})
	}
	return cells
}
