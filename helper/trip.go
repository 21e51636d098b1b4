package helper

import (
	"bus_booking/constants"
	"bus_booking/database"
	"bus_booking/model"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
)

var tripStatusScheduler *cron.Cron
var tripMaintenanceScheduler gocron.Scheduler

// StartTripStatusScheduler moves trips along SCHEDULED → DEPARTED →
// COMPLETED every 5 minutes based on their timetable.
func StartTripStatusScheduler() {
	tripStatusScheduler = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := tripStatusScheduler.AddFunc("*/5 * * * *", updateTripStatuses)
	if err != nil {
		log.Printf("failed to start trip status scheduler: %v", err)
		return
	}

	tripStatusScheduler.Start()
	log.Println("Trip status scheduler started (every 5 minutes)")
}

func updateTripStatuses() {
	now := time.Now()
	db := database.DB

	departed := db.Model(&model.Trip{}).
		Where("status = ? AND departure_time < ?", constants.TRIP_SCHEDULED, now).
		Update("status", constants.TRIP_DEPARTED)
	if departed.Error != nil {
		log.Printf("failed to mark departed trips: %v", departed.Error)
		return
	}

	completed := db.Model(&model.Trip{}).
		Where("status = ? AND arrival_time < ?", constants.TRIP_DEPARTED, now).
		Update("status", constants.TRIP_COMPLETED)
	if completed.Error != nil {
		log.Printf("failed to mark completed trips: %v", completed.Error)
		return
	}

	if departed.RowsAffected > 0 || completed.RowsAffected > 0 {
		log.Printf("trip statuses updated: %d departed, %d completed", departed.RowsAffected, completed.RowsAffected)
	}
}

func StopTripStatusScheduler() {
	if tripStatusScheduler != nil {
		tripStatusScheduler.Stop()
		log.Println("Trip status scheduler stopped")
	}
}

// AutoCloseFinishedTrips runs once a day and releases any trip rows
// still marked DEPARTED long after their arrival time.
func AutoCloseFinishedTrips() {
	log.Println("[CRON] AutoCloseFinishedTrips triggered")

	db := database.DB
	cutoff := time.Now().Add(-24 * time.Hour)

	result := db.Model(&model.Trip{}).
		Where("status = ? AND arrival_time < ?", constants.TRIP_DEPARTED, cutoff).
		Update("status", constants.TRIP_COMPLETED)

	if result.Error != nil {
		log.Printf("failed to close finished trips: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("closed %d finished trips", result.RowsAffected)
	}
}

func StartTripMaintenanceScheduler() {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.FixedZone("ICT", 7*3600)),
	)
	if err != nil {
		log.Fatal(err)
	}

	tripMaintenanceScheduler = s

	_, err = s.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(0, 5, 0),
			),
		),
		gocron.NewTask(AutoCloseFinishedTrips),
	)
	if err != nil {
		log.Fatal(err)
	}

	s.Start()
	log.Println("Trip maintenance scheduler started (00:05 ICT)")
}
