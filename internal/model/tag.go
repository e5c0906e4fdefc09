package model

// Tag is a named label attachable to many bookmarks. Names are unique and case-sensitive.
type Tag struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ContainsTag reports whether tags holds a tag with the given id.
func ContainsTag(tags []Tag, id int64) bool {
	for _, t := range tags {
		if t.ID == id {
			return true
		}
	}
	return false
}
