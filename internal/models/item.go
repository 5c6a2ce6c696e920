package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID       uuid.UUID `json:"id"`
	Category string    `json:"category"`
}

type Item struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Body         string     `json:"body,omitempty"`
	ItemDate     time.Time  `json:"itemDate"`
	FeatureImage string     `json:"featureImage,omitempty"`
	Published    bool       `json:"published"`
	Price        float64    `json:"price"`
	CategoryID   *uuid.UUID `json:"categoryId,omitempty"`

	// CategoryName is joined onto published listings; "Uncategorized" when
	// the item has no category.
	CategoryName string `json:"categoryName,omitempty"`
}
