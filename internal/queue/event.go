// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a paid booking has been stored.
// It contains enough information for downstream consumers to log and email
// the customer without querying the primary database.
type BookingConfirmedEvent struct {
    BookingID     string `json:"booking_id"`
    UserID        string `json:"user_id,omitempty"`
    Service       string `json:"service"`
    Date          string `json:"booking_date"`
    Time          string `json:"booking_time"`
    TableNumber   int    `json:"table_number"`
    CustomerName  string `json:"customer_name"`
    CustomerPhone string `json:"customer_phone"`
    CustomerEmail string `json:"customer_email,omitempty"`
    PaymentID     string `json:"payment_id,omitempty"`
    ConfirmedAt   string `json:"confirmed_at"`
}
