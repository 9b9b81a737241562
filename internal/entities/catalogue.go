package entities

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Book struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id_book"`
	Title           string    `gorm:"uniqueIndex;size:512;not null" json:"title"`
	Authors         string    `gorm:"index;size:512" json:"authors"`
	Synopsis        string    `gorm:"type:text" json:"synopsis"`
	BuyLink         string    `gorm:"size:2048" json:"buy_link"`
	Genres          string    `gorm:"index;size:256" json:"genres"`
	Rating          float64   `gorm:"not null;default:0" json:"rating"` // Mean of comment ratings, 0 when none
	Editorial       string    `gorm:"size:256" json:"editorial"`
	Comments        string    `gorm:"type:text" json:"comments"`
	PublicationDate time.Time `json:"publication_date"`
	Image           string    `gorm:"size:2048" json:"image"`
}

type User struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id_user"`
	Name         string `gorm:"size:100" json:"name"`
	Surname      string `gorm:"size:100" json:"surname"`
	Username     string `gorm:"uniqueIndex;size:100;not null" json:"username"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"column:password;size:72;not null" json:"-"` // bcrypt hash, hidden from JSON
}

// ReadBook records that a user has read a book.
type ReadBook struct {
	UserID int64 `gorm:"primaryKey;autoIncrement:false" json:"id_user"`
	BookID int64 `gorm:"primaryKey;autoIncrement:false;index" json:"id_book"`
}

func (ReadBook) TableName() string {
	return "readbooks"
}

type CommentRating struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id_comment_rating"`
	UserID  int64  `gorm:"index;not null" json:"id_user"`
	BookID  int64  `gorm:"index;not null" json:"id_book"`
	Comment string `gorm:"type:text" json:"comment"`
	Rating  int    `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`

	// Populated by joins against users; not a column.
	Username string `gorm:"->;-:migration" json:"username,omitempty"`
}

func (CommentRating) TableName() string {
	return "comment_ratings"
}

// ValidRating reports whether r lies within the accepted rating range.
func ValidRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
