package service

import (
	"time"

	"github.com/mmynk/clinicbook/internal/models"
)

// sampleData returns the demonstration roster installed on first start.
// Ledgers are left zero; Load recomputes them.
func sampleData(newID func() string, now time.Time) (models.Clients, models.Appointments, models.Payments) {
	ayse, mehmet := newID(), newID()

	clients := models.Clients{
		{
			ID:               ayse,
			FirstName:        "Ayşe",
			LastName:         "Yılmaz",
			Email:            "ayse.yilmaz@example.com",
			Phone:            "0532 123 4567",
			Address:          "Kadıköy, İstanbul",
			BirthDate:        "1985-03-15",
			RegistrationDate: now.AddDate(0, -3, 0).UTC().Format(time.RFC3339),
			Notes:            "Support for anxiety.",
			SessionRate:      500,
			TotalSessions:    12,
		},
		{
			ID:               mehmet,
			FirstName:        "Mehmet",
			LastName:         "Kaya",
			Email:            "mehmet.kaya@example.com",
			Phone:            "0533 987 6543",
			Address:          "Beşiktaş, İstanbul",
			BirthDate:        "1978-07-22",
			RegistrationDate: now.AddDate(0, -2, 0).UTC().Format(time.RFC3339),
			Notes:            "Couples therapy sessions.",
			SessionRate:      600,
			TotalSessions:    8,
		},
	}

	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(models.DateLayout) }

	appointments := models.Appointments{
		{
			ID: newID(), ClientID: ayse, ClientName: "Ayşe Yılmaz",
			Date: day(2), StartTime: "10:00", EndTime: "11:00",
			SessionType: "Individual Therapy", Cost: 500, Status: models.StatusScheduled,
			Notes: "Work on anxiety management techniques.", SessionNumber: 6,
		},
		{
			ID: newID(), ClientID: mehmet, ClientName: "Mehmet Kaya",
			Date: day(3), StartTime: "14:00", EndTime: "15:30",
			SessionType: "Couples Therapy", Cost: 600, Status: models.StatusScheduled,
			Notes: "Communication skills.", SessionNumber: 4,
		},
		{
			ID: newID(), ClientID: ayse, ClientName: "Ayşe Yılmaz",
			Date: day(-3), StartTime: "10:00", EndTime: "11:00",
			SessionType: "Individual Therapy", Cost: 500, Status: models.StatusCompleted,
			Notes: "Breathing techniques taught.", SessionNumber: 5,
		},
	}

	payments := models.Payments{
		{
			ID: newID(), ClientID: ayse, Amount: 1000, Date: day(-17),
			Method: models.MethodCard, Reference: "TXN123456", Description: "Payment for 2 sessions",
		},
		{
			ID: newID(), ClientID: mehmet, Amount: 1800, Date: day(-13),
			Method: models.MethodBankTransfer, Reference: "HVL789012", Description: "Payment for 3 sessions",
		},
	}

	return clients, appointments, payments
}
