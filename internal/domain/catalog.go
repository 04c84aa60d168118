package domain

import "time"

// Tour is a sellable tour package.
type Tour struct {
	ID          string      `bson:"_id" json:"id"`
	Title       string      `bson:"title" json:"title"`
	Slug        string      `bson:"slug" json:"slug"`
	Destination string      `bson:"destination" json:"destination"`
	Description string      `bson:"description,omitempty" json:"description,omitempty"`
	Price       int64       `bson:"price" json:"price"`
	Discount    float64     `bson:"discount" json:"discount"`
	FinalPrice  int64       `bson:"-" json:"finalPrice"`
	Images      []string    `bson:"images,omitempty" json:"images,omitempty"`
	TimeStarts  []TimeStart `bson:"timeStarts" json:"timeStarts"`
	Deleted     bool        `bson:"deleted" json:"-"`
	CreatedAt   time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// Hotel is a bookable hotel with room types.
type Hotel struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Slug        string    `bson:"slug" json:"slug"`
	City        string    `bson:"city" json:"city"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Images      []string  `bson:"images,omitempty" json:"images,omitempty"`
	Rooms       []Room    `bson:"rooms" json:"rooms"`
	Deleted     bool      `bson:"deleted" json:"-"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Room is a room type offered by a hotel.
type Room struct {
	ID        string `bson:"id" json:"id"`
	Name      string `bson:"name" json:"name"`
	Price     int64  `bson:"price" json:"price"`
	Available int    `bson:"available" json:"available"`
}

// FindRoom looks up a room type by id.
func (h Hotel) FindRoom(id string) (Room, bool) {
	for _, r := range h.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}
