// Package export renders bookings into an Excel workbook for the admin.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/salon-booking/internal/booking"
	"github.com/iliyamo/salon-booking/internal/model"
)

// SheetName is the worksheet holding the booking rows.
const SheetName = "Bookings"

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []interface{}{
	"Booking ID", "Created", "Date", "Time", "Table", "Service",
	"Customer", "Phone", "Email", "Status", "Payment", "Payment ID",
}

// Workbook builds the workbook: a period title in row 1, the header in row 2
// and one row per booking from row 3.  A summary sheet holds the status
// counts.
func Workbook(bookings []model.Booking, from, to string) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	period := "all dates"
	if from != "" || to != "" {
		period = fmt.Sprintf("%s to %s", orDash(from), orDash(to))
	}
	if err := f.SetCellValue(SheetName, "A1", "Period: "+period); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetSheetRow(SheetName, "A2", &header); err != nil {
		f.Close()
		return nil, err
	}
	if style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(header), 2)
		_ = f.SetCellStyle(SheetName, "A2", last, style)
	}

	statuses := make([]string, 0, len(bookings))
	for i, b := range bookings {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		row := []interface{}{
			b.ID, b.CreatedAt.UTC().Format("2006-01-02 15:04"), b.Date, b.Time, b.TableNumber, b.Service,
			b.CustomerName, b.CustomerPhone, deref(b.CustomerEmail), b.Status, b.PaymentStatus, deref(b.PaymentID),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
		statuses = append(statuses, b.Status)
	}
	_ = f.SetColWidth(SheetName, "A", "A", 38)
	_ = f.SetColWidth(SheetName, "F", "I", 24)

	if _, err := f.NewSheet("Summary"); err != nil {
		f.Close()
		return nil, err
	}
	st := booking.CountStatuses(statuses)
	rows := [][]interface{}{
		{"Confirmed", st.Confirmed},
		{"Pending", st.Pending},
		{"Cancelled", st.Cancelled},
		{"Total", st.Total},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Summary", cell, &r); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// WriteBookings streams the workbook to w.
func WriteBookings(w io.Writer, bookings []model.Booking, from, to string) error {
	f, err := Workbook(bookings, from, to)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteTo(w)
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
