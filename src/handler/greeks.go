package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func handleGreeks(w http.ResponseWriter, r *http.Request) {
	greeks := positions.CalculateGreeks()

	if err := setResponse(greeks, w); err != nil {
		log.Errorf("handleGreeks: %v", err)
	}
}

// handleGreeksWS streams the most recent aggregate greeks snapshot once per
// second until the client disconnects.
func handleGreeksWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("handleGreeksWS: upgrade failed: %v", err)
		return
	}

	defer conn.Close()

	timer := time.NewTicker(time.Second)
	defer timer.Stop()

	for range timer.C {
		greeks := positions.LastGreeks()
		if greeks == nil {
			continue
		}

		if err := conn.WriteJSON(greeks); err != nil {
			log.Debugf("handleGreeksWS: client gone: %v", err)
			return
		}
	}
}
