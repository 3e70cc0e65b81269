package inventory

import "time"

type Category string

const (
	CategoryEmotion    Category = "emotion"
	CategorySound      Category = "sound"
	CategoryModulation Category = "modulation"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryEmotion, CategorySound, CategoryModulation:
		return true
	}
	return false
}

// Recording is one captured audio sample. AudioRef is an opaque
// pointer into the byte store; the inventory never dereferences it.
type Recording struct {
	ID         string
	OwnerID    string
	Category   Category
	ItemName   string
	AudioRef   string
	Intensity  int
	Locked     bool
	RecordedAt time.Time
}
