package entity

// Filter is a named grouping of user ids with a visibility flag. Active
// filters scope which friends are shown (and share location) on the map.
type Filter struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Members []int64 `json:"members"`
	Active  bool    `json:"active"`
}

// Contains reports whether id is a member of the filter.
func (f Filter) Contains(id int64) bool {
	for _, m := range f.Members {
		if m == id {
			return true
		}
	}
	return false
}
