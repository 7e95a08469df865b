package model

import "time"

// Booking is a customer's reservation of a service at a table for one
// date and time slot.  It corresponds to a row in the `bookings` table.
// Bookings are never deleted; cancelling sets Status to "cancelled".
//
// Fields:
//  ID            – UUID assigned on insert.
//  UserID        – account that made the booking (nil for guests).
//  Service       – service name as shown in the catalog at booking time.
//  Date          – salon-local day, YYYY-MM-DD.
//  Time          – one of the fixed slots, e.g. "09:00 AM".
//  TableNumber   – station number, 1..5.
//  Status        – pending, confirmed or cancelled.
//  PaymentStatus – unpaid or paid.
//  PaymentID     – gateway reference for paid bookings.
type Booking struct {
    ID            string    `json:"id"`             // bookings.id
    CreatedAt     time.Time `json:"created_at"`     // bookings.created_at
    UpdatedAt     time.Time `json:"updated_at"`     // bookings.updated_at
    UserID        *string   `json:"user_id"`        // bookings.user_id (nullable)
    Service       string    `json:"service"`        // bookings.service
    Date          string    `json:"booking_date"`   // bookings.booking_date
    Time          string    `json:"booking_time"`   // bookings.booking_time
    TableNumber   int       `json:"table_number"`   // bookings.table_number
    CustomerName  string    `json:"customer_name"`  // bookings.customer_name
    CustomerPhone string    `json:"customer_phone"` // bookings.customer_phone
    CustomerEmail *string   `json:"customer_email"` // bookings.customer_email (nullable)
    Status        string    `json:"status"`         // bookings.status
    PaymentStatus string    `json:"payment_status"` // bookings.payment_status
    PaymentID     *string   `json:"payment_id"`     // bookings.payment_id (nullable)
}
