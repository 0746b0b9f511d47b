package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/skydial/skydial/internal/api/models"
	"github.com/skydial/skydial/internal/api/response"
	"github.com/skydial/skydial/internal/dashboard"
	"github.com/skydial/skydial/internal/scheduler"
	"github.com/skydial/skydial/internal/sun"
)

// DefaultStreamInterval is how often the sun stream recomputes.
const DefaultStreamInterval = time.Minute

const (
	streamWriteWait    = 10 * time.Second
	streamMaxReadBytes = 512
)

// SunHandlerConfig wires the sun endpoints.
type SunHandlerConfig struct {
	Forecasts ForecastService
	Builder   *dashboard.Builder
	Clock     sun.Clock
	Logger    zerolog.Logger

	// StreamInterval defaults to DefaultStreamInterval when not positive.
	StreamInterval time.Duration

	// CheckOrigin vets websocket upgrades. Nil applies gorilla's same-origin
	// check.
	CheckOrigin func(r *http.Request) bool
}

// SunHandler serves the sun dial for a location, the bare engine, and a
// live websocket stream.
type SunHandler struct {
	forecasts ForecastService
	builder   *dashboard.Builder
	clock     sun.Clock
	path      sun.PathGeometry
	logger    zerolog.Logger
	interval  time.Duration
	upgrader  websocket.Upgrader
}

// NewSunHandler creates a SunHandler.
func NewSunHandler(cfg SunHandlerConfig) *SunHandler {
	if cfg.Clock == nil {
		cfg.Clock = sun.RealClock{}
	}
	if cfg.Builder == nil {
		cfg.Builder = dashboard.NewBuilder(cfg.Clock)
	}
	if cfg.StreamInterval <= 0 {
		cfg.StreamInterval = DefaultStreamInterval
	}

	return &SunHandler{
		forecasts: cfg.Forecasts,
		builder:   cfg.Builder,
		clock:     cfg.Clock,
		path:      sun.DayArc,
		logger:    cfg.Logger,
		interval:  cfg.StreamInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
	}
}

// pointFromQuery writes the 400 itself and reports false on bad input.
func pointFromQuery(w http.ResponseWriter, r *http.Request) (models.Point, bool) {
	q := r.URL.Query()
	p, missing, errs := models.ParsePoint(q.Get("lat"), q.Get("lon"))
	switch {
	case len(missing) > 0:
		response.MissingFields(w, r, missing...)
		return p, false
	case len(errs) > 0:
		response.BadRequest(w, r, "invalid coordinates", errs)
		return p, false
	}
	return p, true
}

// GetSun handles GET /v1/sun?lat=&lon=.
func (h *SunHandler) GetSun(w http.ResponseWriter, r *http.Request) {
	p, ok := pointFromQuery(w, r)
	if !ok {
		return
	}

	dial, err := h.dialFor(r.Context(), p)
	if err != nil {
		writeForecastError(w, r, h.logger, err)
		return
	}

	response.JSON(w, r, http.StatusOK, dial)
}

// Compute handles GET /v1/sun/compute?sunrise=&sunset=&offset=&now=. It runs
// the engine on the given inputs without contacting the forecast provider.
// offset defaults to the sunrise timestamp's own offset, now to the server
// clock.
func (h *SunHandler) Compute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	in := sun.Input{SunriseISO: q.Get("sunrise"), SunsetISO: q.Get("sunset")}

	var missing []string
	if in.SunriseISO == "" {
		missing = append(missing, "sunrise")
	}
	if in.SunsetISO == "" {
		missing = append(missing, "sunset")
	}
	if len(missing) > 0 {
		response.MissingFields(w, r, missing...)
		return
	}

	if v := q.Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < -14*60 || offset > 14*60 {
			response.BadRequest(w, r, "offset must be minutes between -840 and 840", []models.FieldError{
				{Field: "offset", Message: "must be an integer number of minutes", Code: "INVALID"},
			})
			return
		}
		in.OffsetMinutes = offset
	} else if offset, err := sun.ExtractTimezoneOffset(in.SunriseISO); err == nil {
		in.OffsetMinutes = offset
	}

	now := h.clock.Now()
	if v := q.Get("now"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			response.BadRequest(w, r, "now must be RFC3339", []models.FieldError{
				{Field: "now", Message: "must be RFC3339", Code: "INVALID"},
			})
			return
		}
		now = t
	}

	response.JSON(w, r, http.StatusOK, dashboard.NewSunDial(sun.Compute(now, in, h.path), h.path))
}

func (h *SunHandler) dialFor(ctx context.Context, p models.Point) (dashboard.SunDial, error) {
	f, err := h.forecasts.GetForecast(ctx, p.Lat, p.Lon)
	if err != nil {
		return dashboard.SunDial{}, err
	}
	return h.builder.Sun(f), nil
}

// Stream handles GET /v1/sun/stream?lat=&lon=. After the upgrade the dial
// is pushed at once and then every interval. A client message
// {"lat":..,"lon":..} moves the stream and recomputes immediately. The
// schedule stops when the client goes away.
func (h *SunHandler) Stream(w http.ResponseWriter, r *http.Request) {
	start, ok := pointFromQuery(w, r)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		h.logger.Debug().Err(err).Msg("sun stream upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	s := &sunStream{conn: conn, point: start}

	handle := scheduler.Every(ctx, h.interval, func(ctx context.Context) {
		msg := models.StreamMessage{Type: models.StreamTypeSun}
		dial, err := h.dialFor(ctx, s.location())
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			msg = models.StreamMessage{Type: models.StreamTypeError, Error: err.Error()}
		} else {
			msg.Sun = dial
		}
		if err := s.send(msg); err != nil {
			cancel()
		}
	})
	defer handle.Stop()

	conn.SetReadLimit(streamMaxReadBytes)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Msg("sun stream closed")
			}
			return
		}

		var loc models.StreamLocation
		if err := json.Unmarshal(data, &loc); err != nil || loc.Lat == nil || loc.Lon == nil {
			_ = s.send(models.StreamMessage{Type: models.StreamTypeError, Error: "expected {\"lat\":number,\"lon\":number}"})
			continue
		}
		p := models.Point{Lat: *loc.Lat, Lon: *loc.Lon}
		if errs := p.Validate(""); len(errs) > 0 {
			_ = s.send(models.StreamMessage{Type: models.StreamTypeError, Error: "invalid coordinates"})
			continue
		}

		s.move(p)
		handle.Trigger()
	}
}

// sunStream guards the stream's location and serialises writes.
type sunStream struct {
	conn *websocket.Conn

	mu    sync.Mutex
	point models.Point

	writeMu sync.Mutex
}

func (s *sunStream) location() models.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.point
}

func (s *sunStream) move(p models.Point) {
	s.mu.Lock()
	s.point = p
	s.mu.Unlock()
}

func (s *sunStream) send(msg models.StreamMessage) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
	return s.conn.WriteJSON(msg)
}
