package domain

import (
	"time"

	"github.com/google/uuid"
)

// Color is the named background of a sticky note.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPink   Color = "pink"
	ColorPurple Color = "purple"
	ColorIndigo Color = "indigo"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
)

// DefaultColor is used when a note is created without a color.
const DefaultColor = ColorYellow

// AllColors contains all valid colors in palette order
var AllColors = []Color{
	ColorYellow, ColorGreen, ColorBlue, ColorPink,
	ColorPurple, ColorIndigo, ColorRed, ColorOrange,
}

// IsValid checks if a color is part of the palette
func (c Color) IsValid() bool {
	switch c {
	case ColorYellow, ColorGreen, ColorBlue, ColorPink,
		ColorPurple, ColorIndigo, ColorRed, ColorOrange:
		return true
	}
	return false
}

func (c Color) String() string {
	return string(c)
}

// Note field limits.
const (
	TitleMaxLen   = 200
	ContentMaxLen = 10000
)

type Note struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"userId" gorm:"type:uuid;not null;index:idx_notes_user_priority,priority:1"`
	Title     string    `json:"title" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	Color     Color     `json:"color" gorm:"type:varchar(16);not null"`
	Priority  int       `json:"priority" gorm:"not null;default:0;index:idx_notes_user_priority,priority:2"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	User *User `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
