package handler

import (
	"bus_booking/config"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/redis/go-redis/v9"
)

var redisClient = redis.NewClient(&redis.Options{
	Addr: config.ConfigOr("REDIS_ADDR", "localhost:6379"),
})

// TripSeatWebsocket streams seat-map updates for one trip. The client
// gets the full map on connect and on every Redis publish after that.
// Each connection reads its own subscription and writes only to itself,
// so an update reaches every viewer exactly once.
func TripSeatWebsocket(c *websocket.Conn) {
	tripIdStr := c.Params("id")
	id64, _ := strconv.ParseUint(tripIdStr, 10, 64)
	tripId := uint(id64)

	defer c.Close()

	if seatMap, err := buildSeatMap(tripId, time.Now()); err == nil {
		c.WriteJSON(seatMap)
	}

	pubsub := redisClient.Subscribe(
		context.Background(),
		fmt.Sprintf("trip:%d", tripId),
	)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		if err := c.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
			return
		}
	}
}
