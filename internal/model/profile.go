package model

import "time"

// Profile holds the contact details of an account.  Its ID equals the
// user's ID.
type Profile struct {
    ID        string    `json:"id"`
    CreatedAt time.Time `json:"created_at"`
    FullName  *string   `json:"full_name"`
    Email     *string   `json:"email"`
    Phone     *string   `json:"phone"`
}
