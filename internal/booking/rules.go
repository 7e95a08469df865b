// Package booking holds the salon's booking rules: which slots and tables
// exist, when a slot can be booked, which tables are still free and how an
// admin may move a booking between statuses.  It has no I/O.
package booking

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Booking statuses.  StatusRejected never gets written but older rows may
// carry it; it is treated like cancelled when computing availability.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusRejected  = "rejected"
)

// Payment statuses.
const (
	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

// DateLayout is the wire and storage format of booking dates.
const DateLayout = "2006-01-02"

const slotLayout = "03:04 PM"

// TimeSlots are the bookable start times, one per hour.
var TimeSlots = []string{
	"09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM", "01:00 PM", "02:00 PM",
	"03:00 PM", "04:00 PM", "05:00 PM", "06:00 PM", "07:00 PM",
}

// Tables are the salon stations a booking can reserve.
var Tables = []int{1, 2, 3, 4, 5}

var (
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
	ErrPastDate      = errors.New("date is in the past")
	ErrUnknownSlot   = errors.New("unknown time slot")
	ErrSlotPassed    = errors.New("time slot has already started")
	ErrUnknownTable  = errors.New("unknown table number")
	ErrInvalidStatus = errors.New("invalid status")
	ErrTransition    = errors.New("status transition not allowed")
)

// InactiveStatuses are excluded when looking for booked tables.
var InactiveStatuses = []string{StatusCancelled, StatusRejected}

// ParseDate parses a YYYY-MM-DD day in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// IsSlot reports whether s is one of TimeSlots.
func IsSlot(s string) bool {
	for _, t := range TimeSlots {
		if t == s {
			return true
		}
	}
	return false
}

// IsTable reports whether n is one of Tables.
func IsTable(n int) bool {
	for _, t := range Tables {
		if t == n {
			return true
		}
	}
	return false
}

// SlotStart returns the instant a slot begins on the given day.
func SlotStart(day time.Time, slot string) (time.Time, error) {
	t, err := time.Parse(slotLayout, slot)
	if err != nil || !IsSlot(slot) {
		return time.Time{}, ErrUnknownSlot
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// ValidateSlot checks a requested date, slot and table against now.  Days
// before today are rejected; today is accepted only for slots that have not
// started yet.
func ValidateSlot(date, slot string, table int, now time.Time) error {
	loc := now.Location()
	day, err := ParseDate(date, loc)
	if err != nil {
		return err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	if day.Before(today) {
		return ErrPastDate
	}
	start, err := SlotStart(day, slot)
	if err != nil {
		return err
	}
	if !start.After(now) {
		return ErrSlotPassed
	}
	if !IsTable(table) {
		return fmt.Errorf("%w: %d", ErrUnknownTable, table)
	}
	return nil
}

// FreeTables returns the tables not present in booked, ascending.
func FreeTables(booked []int) []int {
	taken := make(map[int]struct{}, len(booked))
	for _, n := range booked {
		taken[n] = struct{}{}
	}
	free := make([]int, 0, len(Tables))
	for _, n := range Tables {
		if _, ok := taken[n]; !ok {
			free = append(free, n)
		}
	}
	return free
}

// Availability describes one date/slot of the table grid.
type Availability struct {
	Date   string `json:"date"`
	Time   string `json:"time"`
	Booked []int  `json:"booked"`
	Free   []int  `json:"free"`
}

// NewAvailability builds the grid for a slot from the booked table numbers.
// Duplicates in booked are collapsed.
func NewAvailability(date, slot string, booked []int) Availability {
	seen := make(map[int]struct{}, len(booked))
	uniq := make([]int, 0, len(booked))
	for _, n := range booked {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		uniq = append(uniq, n)
	}
	sort.Ints(uniq)
	return Availability{Date: date, Time: slot, Booked: uniq, Free: FreeTables(uniq)}
}

// IsFree reports whether table is free in a.
func (a Availability) IsFree(table int) bool {
	for _, n := range a.Free {
		if n == table {
			return true
		}
	}
	return false
}

// IsStatus reports whether s is a status an admin may set.
func IsStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// CanTransition reports whether an admin may move a booking from one status
// to another.  Cancelled is terminal.
func CanTransition(from, to string) error {
	if !IsStatus(to) {
		return ErrInvalidStatus
	}
	switch from {
	case StatusPending:
		if to == StatusConfirmed || to == StatusCancelled {
			return nil
		}
	case StatusConfirmed:
		if to == StatusCancelled {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrTransition, from, to)
}
