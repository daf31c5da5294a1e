// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"clock-map/internal/api"
	"clock-map/internal/clock"
	"clock-map/internal/clocklist"
	"clock-map/internal/dotmap"
	"clock-map/internal/geodata"
	"clock-map/internal/logger"
	"clock-map/internal/metrics"
	"clock-map/internal/middleware"
	"clock-map/internal/migrate"
	"clock-map/internal/pins"
	"clock-map/internal/render"
	"clock-map/internal/utils"

	"golang.org/x/sync/errgroup"
)

func main() {
	loaded := utils.LoadEnvFiles()
	// 日志初始化
	l := logger.Setup()
	l.Debug("log_init_ok", "env_files", loaded)
	apiBase := utils.EnvString("API_BASE", "/api")
	l.Debug("config_api_base", "base", apiBase)
	geoDir := utils.EnvString("GEODATA_DIR", "")

	desc, err := dotmap.LoadDescriptor(utils.EnvString("MAP_DESCRIPTOR_PATH", ""))
	if err != nil {
		l.Error("descriptor_load_error", "err", err)
		os.Exit(1)
	}
	renderer := dotmap.NewRenderer(desc, dotmap.Options{
		DotRadius:  utils.EnvFloat("MAP_DOT_RADIUS", dotmap.DefaultOptions.DotRadius),
		DotColor:   utils.EnvString("MAP_DOT_COLOR", dotmap.DefaultOptions.DotColor),
		Shape:      utils.EnvString("MAP_SHAPE", dotmap.ShapeCircle),
		Background: utils.EnvString("MAP_BACKGROUND", dotmap.DefaultOptions.Background),
	})
	l.Info("descriptor_ready", "width", desc.Width, "height", desc.Height, "points", len(desc.Points))

	rc := utils.OpenRedisFromEnv()
	if rc == nil {
		l.Info("redis_disabled")
	} else {
		defer rc.Close()
		if err := rc.Ping(context.Background()).Err(); err != nil {
			l.Error("redis_ping_error", "err", err)
		} else {
			l.Info("redis_ping_ok")
		}
	}

	cacheCfg := render.Config{
		Style:     pins.Style{Color: utils.EnvString("PIN_COLOR", pins.DefaultStyle.Color), Radius: utils.EnvFloat("PIN_RADIUS", pins.DefaultStyle.Radius)},
		CacheSize: utils.EnvInt("RENDER_CACHE_SIZE", 256),
		TTL:       time.Duration(utils.EnvInt("RENDER_CACHE_TTL_S", 3600)) * time.Second,
	}
	// 文档注释：加载数据集并构建渲染服务；启动与热重载共用
	// 背景：数据集不一致不阻断启动，只记录告警，相关名称解析时静默未命中。
	load := func() (*api.Snapshot, error) {
		ds, err := geodata.Load(geoDir)
		if err != nil {
			return nil, err
		}
		if rep := geodata.Check(ds.Index, ds.Table); !rep.Clean() {
			l.Warn("geodata_inconsistent",
				"missing_coordinates", len(rep.MissingCoordinates),
				"missing_cities", len(rep.MissingCities),
				"city_collisions", len(rep.CityCollisions),
				"shadowed_cities", len(rep.ShadowedCities),
			)
		}
		return &api.Snapshot{Dataset: ds, Maps: render.NewService(pins.NewResolverFromDataset(ds), renderer, rc, cacheCfg)}, nil
	}
	snap, err := load()
	if err != nil {
		l.Error("geodata_load_error", "err", err)
		os.Exit(1)
	}

	var st *clocklist.Store
	if utils.EnvBool("CLOCKLIST_ENABLED", false) {
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			l.Error("db_open_error", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		l.Info("db_open_ok")
		if err := db.Ping(); err != nil {
			l.Error("db_ping_error", "err", err)
		} else {
			l.Info("db_ping_ok")
		}
		if err := migrate.EnsureSchema(db); err != nil {
			l.Error("schema_error", "err", err)
			os.Exit(1)
		}
		st = clocklist.AttachDB(db)
		if _, err := st.SeedDefaults(context.Background()); err != nil {
			l.Error("clock_seed_error", "err", err)
		}
	} else {
		l.Info("clocklist_disabled")
	}

	ticker := clock.New(time.Duration(utils.EnvInt("TICK_INTERVAL_S", 60)) * time.Second)

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(api.Deps{
		Snapshot:   snap,
		Store:      st,
		Clock:      ticker,
		Reload:     load,
		AdminToken: os.Getenv("ADMIN_TOKEN"),
	})
	mux.Handle(apiBase+"/", http.StripPrefix(apiBase, apiMux))
	mux.Handle(apiBase+"/metrics", metrics.Handler())

	addr := utils.EnvString("ADDR", ":8080")
	handler := logger.AccessMiddleware(l)(mux)
	handler = middleware.Wrap(handler)
	s := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ticker.Run(gctx) })
	g.Go(func() error {
		var err error
		if utils.EnvBool("TLS_ENABLE", false) {
			certPath := utils.EnvString("TLS_CERT_PATH", filepath.Join("data", "certs", "server.crt"))
			keyPath := utils.EnvString("TLS_KEY_PATH", filepath.Join("data", "certs", "server.key"))
			if err := utils.EnsureSelfSignedCert(certPath, keyPath, "clock-map.local"); err != nil {
				return err
			}
			l.Info("listening_tls", "addr", addr, "cert", certPath)
			err = s.ListenAndServeTLS(certPath, keyPath)
		} else {
			l.Info("listening", "addr", addr)
			err = s.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		l.Info("shutdown_begin")
		return s.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		l.Error("server_exit_error", "err", err)
		os.Exit(1)
	}
	l.Info("shutdown_done")
}
