package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/miqat/internal/hijri"
	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

// request holds the parsed common query parameters.
type request struct {
	params prayer.Params
	now    time.Time
}

func parseFloat(c *gin.Context, key string) (float64, *Error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, badRequest("missing %s parameter", key)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, badRequest("invalid %s %q: must be a number", key, raw)
	}
	return v, nil
}

func parseCoordinate(c *gin.Context) (prayer.Coordinate, *Error) {
	lat, apiErr := parseFloat(c, "lat")
	if apiErr != nil {
		return prayer.Coordinate{}, apiErr
	}
	lng, apiErr := parseFloat(c, "lng")
	if apiErr != nil {
		return prayer.Coordinate{}, apiErr
	}
	coord := prayer.Coordinate{Latitude: lat, Longitude: lng}
	if err := coord.Validate(); err != nil {
		return prayer.Coordinate{}, badRequest("%v", err)
	}
	return coord, nil
}

// parseClock reads tz, now and date. date defaults to now's civil date.
func (s *Server) parseClock(c *gin.Context) (loc *time.Location, now, date time.Time, apiErr *Error) {
	loc = s.opts.Location
	if tz := c.Query("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return nil, now, date, badRequest("invalid tz %q", tz)
		}
		loc = l
	}

	now = s.opts.Now().In(loc)
	if raw := c.Query("now"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, now, date, badRequest("invalid now %q: must be RFC3339", raw)
		}
		now = t.In(loc)
	}

	date = now
	if raw := c.Query("date"); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return nil, now, date, badRequest("invalid date %q: must be YYYY-MM-DD", raw)
		}
		date = d
	}
	return loc, now, date, nil
}

func (s *Server) parseRequest(c *gin.Context) (request, *Error) {
	coord, apiErr := parseCoordinate(c)
	if apiErr != nil {
		return request{}, apiErr
	}

	method := s.opts.Method
	if raw := c.Query("method"); raw != "" {
		m, err := prayer.ParseMethod(raw)
		if err != nil {
			return request{}, badRequest("%v", err)
		}
		method = m
	}

	rule := s.opts.HighLatitude
	if raw := c.Query("high_latitude_rule"); raw != "" {
		r, err := prayer.ParseHighLatitudeRule(raw)
		if err != nil {
			return request{}, badRequest("%v", err)
		}
		rule = r
	}

	loc, now, date, apiErr := s.parseClock(c)
	if apiErr != nil {
		return request{}, apiErr
	}

	return request{
		params: prayer.Params{
			Coordinate:   coord,
			Date:         date,
			Method:       method,
			Location:     loc,
			HighLatitude: rule,
		},
		now: now,
	}, nil
}

func (s *Server) load(c *gin.Context, p prayer.Params) (prayer.Schedule, *Error) {
	sched, err := s.opts.Source.Schedule(c.Request.Context(), p)
	if err != nil {
		log.Error().Err(err).Msg("schedule source failed")
		return prayer.Schedule{}, &Error{Code: http.StatusBadGateway, Message: "schedule unavailable"}
	}
	return sched, nil
}

// instantView renders an instant; unavailable instants have no time.
type instantView struct {
	Name      string `json:"name"`
	Time      string `json:"time,omitempty"`
	Available bool   `json:"available"`
}

func viewInstant(in prayer.Instant, loc *time.Location) instantView {
	v := instantView{Name: in.Name.Key(), Available: in.Available()}
	if v.Available {
		v.Time = in.Time.In(loc).Format(time.RFC3339)
	}
	return v
}

type methodView struct {
	Key          string  `json:"key"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	FajrAngle    float64 `json:"fajr_angle"`
	IshaAngle    float64 `json:"isha_angle,omitempty"`
	IshaInterval int     `json:"isha_interval,omitempty"`
	MaghribAngle float64 `json:"maghrib_angle,omitempty"`
}

func (s *Server) methods(c *gin.Context) (any, *Error) {
	out := make([]methodView, 0, len(prayer.Methods))
	for _, m := range prayer.Methods {
		cfg := m.Config()
		out = append(out, methodView{
			Key:          cfg.Key,
			Code:         cfg.Code,
			Name:         cfg.Name,
			FajrAngle:    cfg.FajrAngle,
			IshaAngle:    cfg.IshaAngle,
			IshaInterval: cfg.IshaInterval,
			MaghribAngle: cfg.MaghribAngle,
		})
	}
	return out, nil
}

type scheduleView struct {
	Date       string            `json:"date"`
	Method     string            `json:"method"`
	Timezone   string            `json:"timezone"`
	Coordinate prayer.Coordinate `json:"coordinate"`
	Hijri      hijri.Date        `json:"hijri"`
	Prayers    []instantView     `json:"prayers"`
}

func (s *Server) schedule(c *gin.Context) (any, *Error) {
	req, apiErr := s.parseRequest(c)
	if apiErr != nil {
		return nil, apiErr
	}
	sched, apiErr := s.load(c, req.params)
	if apiErr != nil {
		return nil, apiErr
	}

	loc := req.params.Location
	view := scheduleView{
		Date:       sched.Date().Format("2006-01-02"),
		Method:     req.params.Method.String(),
		Timezone:   loc.String(),
		Coordinate: req.params.Coordinate,
		Hijri:      hijri.FromTime(sched.Date()),
	}
	for _, in := range sched.Instants {
		view.Prayers = append(view.Prayers, viewInstant(in, loc))
	}
	return view, nil
}

type countdownView struct {
	prayer.Countdown
	Text string `json:"text"`
}

type currentView struct {
	Now       string        `json:"now"`
	Current   string        `json:"current"`
	Next      instantView   `json:"next"`
	Countdown countdownView `json:"countdown"`
	Progress  float64       `json:"progress"`
}

// navigate loads the schedule for the request's date and derives the
// current and next instants at the request's now.
func (s *Server) navigate(c *gin.Context) (request, currentView, *Error) {
	req, apiErr := s.parseRequest(c)
	if apiErr != nil {
		return req, currentView{}, apiErr
	}
	sched, apiErr := s.load(c, req.params)
	if apiErr != nil {
		return req, currentView{}, apiErr
	}

	next, err := prayer.NextFrom(c.Request.Context(), s.opts.Source, sched, req.now)
	if err != nil {
		log.Error().Err(err).Msg("next prayer lookup failed")
		return req, currentView{}, &Error{Code: http.StatusBadGateway, Message: "schedule unavailable"}
	}

	current, err := prayer.CurrentFrom(c.Request.Context(), s.opts.Source, sched, req.now)
	if err != nil {
		log.Error().Err(err).Msg("current prayer lookup failed")
		return req, currentView{}, &Error{Code: http.StatusBadGateway, Message: "schedule unavailable"}
	}

	loc := req.params.Location
	view := currentView{
		Now:      req.now.Format(time.RFC3339),
		Current:  current.Name.Key(),
		Next:     viewInstant(next, loc),
		Progress: prayer.Progress(current, next, req.now),
	}
	if next.Available() {
		cd := prayer.TimeUntil(next.Time, req.now)
		view.Countdown = countdownView{Countdown: cd, Text: cd.String()}
	}
	return req, view, nil
}

func (s *Server) current(c *gin.Context) (any, *Error) {
	_, view, apiErr := s.navigate(c)
	if apiErr != nil {
		return nil, apiErr
	}
	return view, nil
}

func (s *Server) next(c *gin.Context) (any, *Error) {
	_, view, apiErr := s.navigate(c)
	if apiErr != nil {
		return nil, apiErr
	}
	return gin.H{"next": view.Next, "countdown": view.Countdown}, nil
}

func (s *Server) countdown(c *gin.Context) (any, *Error) {
	_, view, apiErr := s.navigate(c)
	if apiErr != nil {
		return nil, apiErr
	}
	return gin.H{
		"prayer":  view.Next.Name,
		"hours":   view.Countdown.Hours,
		"minutes": view.Countdown.Minutes,
		"seconds": view.Countdown.Seconds,
		"text":    view.Countdown.Text,
	}, nil
}

func (s *Server) hijri(c *gin.Context) (any, *Error) {
	_, _, date, apiErr := s.parseClock(c)
	if apiErr != nil {
		return nil, apiErr
	}
	today := hijri.FromTime(date)
	return gin.H{
		"date":      date.Format("2006-01-02"),
		"hijri":     today,
		"formatted": today.String(),
		"ramadan":   hijri.RamadanStatus(date),
	}, nil
}
