package model

import "time"

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Box struct {
	ID         int64     `json:"id"`
	Number     int       `json:"number"`
	Name       string    `json:"name"`
	Location   string    `json:"location,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	CategoryID int64     `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BoxWithCategory is a box joined with its category for list views.
type BoxWithCategory struct {
	Box
	CategoryName  string `json:"categoryName"`
	CategoryColor string `json:"categoryColor,omitempty"`
}

type Item struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BoxItem is an item as it appears inside a box, with its quantity.
type BoxItem struct {
	Item
	Quantity int `json:"quantity"`
}

type BoxDetail struct {
	BoxWithCategory
	Items []BoxItem `json:"items"`
}

type SearchResult struct {
	ItemID        int64  `json:"itemId"`
	ItemName      string `json:"itemName"`
	Quantity      int    `json:"quantity"`
	BoxID         int64  `json:"boxId"`
	BoxNumber     int    `json:"boxNumber"`
	BoxName       string `json:"boxName"`
	CategoryID    int64  `json:"categoryId"`
	CategoryName  string `json:"categoryName"`
	CategoryColor string `json:"categoryColor,omitempty"`
}

// PrintCategory is one section of the consolidated print overview.
type PrintCategory struct {
	Category
	Boxes []PrintBox `json:"boxes"`
}

type PrintBox struct {
	Box
	Items []BoxItem `json:"items"`
}

type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description string    `json:"description,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
