package handler

import (
	"bus_booking/booking"
	"log"

	"github.com/jonboulle/clockwork"
	"gorm.io/gorm"
)

// Package-level wiring for the seat locking core. InitCore must run
// after database.ConnectDB and before routes are served.
var (
	Locks   *booking.Manager
	Orch    *booking.Orchestrator
	sweeper *booking.Sweeper
)

func InitCore(db *gorm.DB) {
	store := booking.NewGormStore(db)
	clock := clockwork.NewRealClock()

	Locks = booking.NewManager(store, clock)
	Orch = booking.NewOrchestrator(store, Locks, clock)
	sweeper = booking.NewSweeper(store, Orch, clock)
}

func StartSweeper() {
	if sweeper == nil {
		log.Fatal("InitCore must be called before StartSweeper")
	}
	sweeper.Start()
	log.Println("Seat lock sweeper started")
}

func StopSweeper() {
	if sweeper != nil {
		sweeper.Stop()
		log.Println("Seat lock sweeper stopped")
	}
}
