package model

import "time"

// Service is an item of the salon catalog, stored in the `services` table.
// Price is kept as the display string entered by the admin (e.g. "₹150");
// it is never used for arithmetic.
type Service struct {
    ID          string    `json:"id"`
    CreatedAt   time.Time `json:"created_at"`
    UpdatedAt   time.Time `json:"updated_at"`
    Name        string    `json:"name"`
    Category    string    `json:"category"`
    Description *string   `json:"description"`
    Duration    *string   `json:"duration"`
    Price       string    `json:"price"`
    ImageURL    *string   `json:"image_url"`
}
