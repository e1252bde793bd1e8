package database

import (
	"cinebook/internal/bookings"
	"cinebook/internal/layouts"
	"cinebook/internal/shows"
	"cinebook/internal/theaters"
	"cinebook/internal/users"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&users.User{},
		&theaters.Theater{},
		&theaters.Screen{},
		&theaters.FilledTime{},
		&layouts.SeatLayout{},
		&layouts.Seat{},
		&shows.Show{},
		&shows.BookedSeat{},
		&bookings.Booking{},
		&bookings.BookingSeat{},
		&bookings.Payment{},
	)
}
