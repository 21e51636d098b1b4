package database

import (
	"bus_booking/constants"
	"bus_booking/model"
	"fmt"
	"log"

	"github.com/gosimple/slug"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func SeedData(db *gorm.DB) {
	bytes, err := bcrypt.GenerateFromPassword([]byte("123456cn"), 10)
	HashPassword := string(bytes)
	if err != nil {
		HashPassword = "123456cn"
	}
	accounts := []model.Account{
		{Username: "Administration", Password: HashPassword, Active: true, Role: constants.ROLE_ADMIN},
	}

	for _, account := range accounts {
		if err := db.Where(model.Account{Username: account.Username}).FirstOrCreate(&account).Error; err != nil {
			log.Println("failed to seed data for account:", account.Username, "error:", err)
		}
	}

	seatTypes := []model.SeatType{
		{Type: "STANDARD", PriceModifier: 1},
		{Type: "VIP", PriceModifier: 1.3},
		{Type: "SLEEPER", PriceModifier: 1.8},
	}
	for i := range seatTypes {
		if err := db.Where("type = ?", seatTypes[i].Type).FirstOrCreate(&seatTypes[i]).Error; err != nil {
			log.Println("failed to seed data for seat type:", seatTypes[i].Type, "error:", err)
		}
	}

	routes := []model.Route{
		{Origin: "Hà Nội", Destination: "Đà Nẵng", DistanceKm: 765, DurationMin: 780, IsActive: true},
		{Origin: "Hà Nội", Destination: "Hải Phòng", DistanceKm: 120, DurationMin: 150, IsActive: true},
		{Origin: "Sài Gòn", Destination: "Đà Lạt", DistanceKm: 308, DurationMin: 420, IsActive: true},
	}
	for i := range routes {
		routes[i].Slug = slug.Make(routes[i].Origin + " " + routes[i].Destination)
		if err := db.Where(model.Route{Slug: routes[i].Slug}).FirstOrCreate(&routes[i]).Error; err != nil {
			log.Println("failed to seed data for route:", routes[i].Slug, "error:", err)
			continue
		}
		points := []model.RoutePoint{
			{RouteId: routes[i].ID, Name: "Bến xe " + routes[i].Origin, Kind: model.PointPickup, OffsetMin: 0},
			{RouteId: routes[i].ID, Name: "Bến xe " + routes[i].Destination, Kind: model.PointDropoff, OffsetMin: routes[i].DurationMin},
		}
		for _, p := range points {
			db.Where(model.RoutePoint{RouteId: p.RouteId, Name: p.Name, Kind: p.Kind}).FirstOrCreate(&p)
		}
	}

	seedDemoBus(db, seatTypes)
}

// seedDemoBus creates one 20-seat coach so a fresh install has something to sell.
func seedDemoBus(db *gorm.DB, seatTypes []model.SeatType) {
	bus := model.Bus{PlateNumber: "29B-100.01", Model: "Thaco TB120S", Operator: "Demo Lines", IsActive: true}
	if err := db.Where(model.Bus{PlateNumber: bus.PlateNumber}).FirstOrCreate(&bus).Error; err != nil {
		log.Println("failed to seed data for bus:", bus.PlateNumber, "error:", err)
		return
	}

	typeByName := map[string]uint{}
	for _, st := range seatTypes {
		typeByName[st.Type] = st.ID
	}

	rows := []string{"A", "B", "C", "D", "E"}
	for ri, row := range rows {
		for col := 1; col <= 4; col++ {
			stId := typeByName["STANDARD"]
			if ri == 0 {
				stId = typeByName["VIP"]
			}
			seat := model.Seat{
				BusId:      bus.ID,
				Code:       fmt.Sprintf("%s%d", row, col),
				Row:        row,
				Column:     col,
				SeatTypeId: stId,
			}
			db.Where(model.Seat{BusId: bus.ID, Code: seat.Code}).FirstOrCreate(&seat)
		}
	}
}
