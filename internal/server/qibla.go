package server

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/miqat/internal/qibla"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type qiblaView struct {
	Bearing    float64 `json:"bearing"`
	DistanceKm float64 `json:"distance_km"`
}

func (s *Server) qibla(c *gin.Context) (any, *Error) {
	coord, apiErr := parseCoordinate(c)
	if apiErr != nil {
		return nil, apiErr
	}
	return qiblaView{Bearing: qibla.Bearing(coord), DistanceKm: qibla.Distance(coord)}, nil
}

func (s *Server) aligned(c *gin.Context) (any, *Error) {
	coord, apiErr := parseCoordinate(c)
	if apiErr != nil {
		return nil, apiErr
	}
	heading, apiErr := parseFloat(c, "heading")
	if apiErr != nil {
		return nil, apiErr
	}
	if math.IsNaN(heading) || math.IsInf(heading, 0) {
		return nil, badRequest("heading must be finite")
	}
	return qibla.Check(heading, qibla.Bearing(coord)), nil
}

// headingMessage is sent by websocket clients.
type headingMessage struct {
	Heading *float64 `json:"heading"`
}

// alignmentMessage answers each heading.
type alignmentMessage struct {
	Heading    float64 `json:"heading"`
	Bearing    float64 `json:"bearing"`
	DistanceKm float64 `json:"distance_km"`
	Aligned    bool    `json:"aligned"`
	Delta      float64 `json:"delta"`
}

// qiblaSocket answers every {"heading": n} with the alignment for the
// coordinate given in the query. Invalid messages get {"error": ...} and the
// connection stays open.
func (s *Server) qiblaSocket(c *gin.Context) {
	coord, apiErr := parseCoordinate(c)
	if apiErr != nil {
		c.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	bearing := qibla.Bearing(coord)
	distance := qibla.Distance(coord)
	log.Debug().Stringer("coordinate", coord).Float64("bearing", bearing).Msg("qibla stream opened")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug().Err(err).Msg("qibla stream closed")
			}
			return
		}

		var msg headingMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Heading == nil {
			if err := conn.WriteJSON(gin.H{"error": "message must be {\"heading\": <degrees>}"}); err != nil {
				return
			}
			continue
		}

		a := qibla.Check(*msg.Heading, bearing)
		reply := alignmentMessage{
			Heading:    a.Heading,
			Bearing:    a.Bearing,
			DistanceKm: distance,
			Aligned:    a.Aligned,
			Delta:      a.Delta,
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}
