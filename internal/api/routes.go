// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"clock-map/internal/clock"
	"clock-map/internal/clocklist"
	"clock-map/internal/logger"
	"clock-map/internal/metrics"
	"clock-map/internal/middleware"
)

// Deps：Store 为 nil 表示时钟列表已禁用；Reload 为 nil 表示不支持热重载
type Deps struct {
	Snapshot   *Snapshot
	Store      *clocklist.Store
	Clock      *clock.Broadcaster
	Reload     func() (*Snapshot, error)
	AdminToken string
}

type server struct {
	snap   atomic.Pointer[Snapshot]
	store  *clocklist.Store
	clock  *clock.Broadcaster
	reload func() (*Snapshot, error)
	log    *slog.Logger
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 /api 前缀
func BuildRoutes(d Deps) *http.ServeMux {
	s := &server{store: d.Store, clock: d.Clock, reload: d.Reload, log: logger.Component("api")}
	s.snap.Store(d.Snapshot)
	admin := middleware.AdminToken(d.AdminToken)

	mux := http.NewServeMux()
	s.handle(mux, "GET /pins", "pins", http.HandlerFunc(s.pins))
	s.handle(mux, "GET /map.svg", "map", http.HandlerFunc(s.mapSVG))
	s.handle(mux, "GET /countries", "countries", http.HandlerFunc(s.countries))
	s.handle(mux, "GET /countries/{name}/cities", "cities", http.HandlerFunc(s.cities))
	s.handle(mux, "GET /clocks", "clocks_list", http.HandlerFunc(s.listClocks))
	s.handle(mux, "POST /clocks", "clocks_add", admin(http.HandlerFunc(s.addClock)))
	s.handle(mux, "DELETE /clocks", "clocks_remove", admin(http.HandlerFunc(s.removeClock)))
	s.handle(mux, "GET /clock/now", "clock_now", http.HandlerFunc(s.clockNow))
	s.handle(mux, "GET /clock/ws", "clock_ws", http.HandlerFunc(s.clockWS))
	s.handle(mux, "POST /reload", "reload", middleware.RequireAdminToken(d.AdminToken)(http.HandlerFunc(s.reloadData)))
	s.handle(mux, "GET /healthz", "healthz", http.HandlerFunc(s.healthz))
	return mux
}

func (s *server) handle(mux *http.ServeMux, pattern, route string, h http.Handler) {
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.RequestsTotal.WithLabelValues(route).Inc()
		h.ServeHTTP(w, r)
	}))
}

// queryNames：支持重复的 name 参数与逗号分隔的 names 参数，名称原样保留
func queryNames(r *http.Request) []string {
	q := r.URL.Query()
	names := append([]string{}, q["name"]...)
	for _, v := range q["names"] {
		if v == "" {
			continue
		}
		names = append(names, strings.Split(v, ",")...)
	}
	return names
}

func (s *server) pins(w http.ResponseWriter, r *http.Request) {
	snap := s.snap.Load()
	res := pinsResponse{Pins: []pinResult{}, Unresolved: []string{}}
	for _, rr := range snap.Maps.Resolver().ResolveAll(queryNames(r)) {
		if !rr.OK() {
			res.Unresolved = append(res.Unresolved, rr.Name)
			continue
		}
		res.Pins = append(res.Pins, pinResult{Name: rr.Name, Country: rr.Country, Outcome: string(rr.Outcome), Lat: rr.Coordinate.Lat, Lng: rr.Coordinate.Lng})
	}
	writeJSON(w, http.StatusOK, res)
}

// mapSVG：未指定名称时使用时钟列表，时钟列表禁用时使用默认城市
func (s *server) mapSVG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	names := queryNames(r)
	if len(names) == 0 {
		names = clocklist.DefaultCities
		if s.store != nil {
			stored, err := s.store.Names(ctx)
			if err != nil {
				s.log.Error("clock_names_error", "err", err)
				writeError(w, http.StatusInternalServerError, "clock list unavailable")
				return
			}
			names = stored
		}
	}
	svg, source, err := s.snap.Load().Maps.MapSVG(ctx, names)
	if err != nil {
		s.log.Debug("map_render_aborted", "err", err)
		return
	}
	w.Header().Set("content-type", "image/svg+xml")
	w.Header().Set("cache-control", "no-store")
	w.Header().Set("x-cache", source)
	_, _ = w.Write(svg)
}

func (s *server) countries(w http.ResponseWriter, r *http.Request) {
	ds := s.snap.Load().Dataset
	out := []countryResult{}
	for _, name := range ds.Index.Countries() {
		c := countryResult{Name: name, Cities: len(ds.Index.CitiesOf(name))}
		if coord, ok := ds.Table.CoordinateOf(name); ok {
			c.Coordinate = &coord
		}
		out = append(out, c)
	}
	writeJSON(w, http.StatusOK, map[string]any{"countries": out})
}

func (s *server) cities(w http.ResponseWriter, r *http.Request) {
	ds := s.snap.Load().Dataset
	name := r.PathValue("name")
	if !ds.Index.Has(name) {
		writeError(w, http.StatusNotFound, "unknown country")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"country": name, "cities": ds.Index.CitiesOf(name)})
}

func (s *server) listClocks(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "clock list disabled")
		return
	}
	es, err := s.store.List(r.Context())
	if err != nil {
		s.log.Error("clock_list_error", "err", err)
		writeError(w, http.StatusInternalServerError, "clock list unavailable")
		return
	}
	res := s.snap.Load().Maps.Resolver()
	out := make([]clockResult, len(es))
	for i, e := range es {
		_, ok := res.ResolveOne(e.Name)
		out[i] = clockResult{Entry: e, Resolved: ok}
	}
	writeJSON(w, http.StatusOK, map[string]any{"clocks": out})
}

func (s *server) addClock(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "clock list disabled")
		return
	}
	var req addClockRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	e, err := s.store.Add(r.Context(), req.Name, req.Label)
	switch {
	case errors.Is(err, clocklist.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "name required")
		return
	case err != nil:
		s.log.Error("clock_add_error", "name", req.Name, "err", err)
		writeError(w, http.StatusInternalServerError, "clock list unavailable")
		return
	}
	_, ok := s.snap.Load().Maps.Resolver().ResolveOne(e.Name)
	s.log.Info("clock_added", "name", e.Name, "resolved", ok)
	writeJSON(w, http.StatusCreated, clockResult{Entry: *e, Resolved: ok})
}

func (s *server) removeClock(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "clock list disabled")
		return
	}
	name := r.URL.Query().Get("name")
	err := s.store.Remove(r.Context(), name)
	switch {
	case errors.Is(err, clocklist.ErrNotFound):
		writeError(w, http.StatusNotFound, "unknown clock")
		return
	case err != nil:
		s.log.Error("clock_remove_error", "name", name, "err", err)
		writeError(w, http.StatusInternalServerError, "clock list unavailable")
		return
	}
	s.log.Info("clock_removed", "name", name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) clockNow(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int64{"at": time.Now().UnixMilli()})
}

func (s *server) reloadData(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		writeError(w, http.StatusNotImplemented, "reload not configured")
		return
	}
	snap, err := s.reload()
	if err != nil {
		s.log.Error("geodata_reload_error", "err", err)
		writeError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	s.snap.Store(snap)
	s.log.Info("geodata_reloaded", "source", snap.Dataset.Source, "countries", snap.Dataset.Index.Len(), "coordinates", snap.Dataset.Table.Len())
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) healthz(w http.ResponseWriter, r *http.Request) {
	ds := s.snap.Load().Dataset
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"source":       ds.Source,
		"countries":    ds.Index.Len(),
		"coordinates":  ds.Table.Len(),
		"clocks":       s.store != nil,
		"tick_running": s.clock != nil,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
