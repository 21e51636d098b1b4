package database

import (
	"bus_booking/config"
	"bus_booking/model"
	"fmt"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	var err error
	p := config.Config("DB_PORT")
	port, err := strconv.ParseUint(p, 10, 32)

	if err != nil {
		panic("failed to parse database port")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", config.Config("DB_HOST"), port, config.Config("DB_USER"), config.Config("DB_PASSWORD"), config.Config("DB_NAME"))
	// Seat mutations are single conditional UPDATEs; explicit transactions
	// are opened only where redeeming a lock needs one.
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})

	if err != nil {
		panic("failed to connect database")
	}

	fmt.Println("Connection Opened to Database")
	DB.AutoMigrate(
		&model.Account{},
		&model.Customer{},
		&model.SeatType{},
		&model.Bus{},
		&model.Seat{},
		&model.Route{},
		&model.RoutePoint{},
		&model.Trip{},
		&model.TripSeat{},
		&model.SeatLock{},
		&model.Booking{},
		&model.Passenger{},
		&model.PasswordResetToken{},
	)
	fmt.Println("Database Migrated")

	SeedData(DB)
}
