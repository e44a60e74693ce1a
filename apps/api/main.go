package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/sabaq/backend/apps/api/echo"
	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/course"
	"github.com/sabaq/backend/core/user"
	"github.com/sabaq/backend/services/logger"
	"github.com/sabaq/backend/storage/cache"
	"github.com/sabaq/backend/storage/database"
	"github.com/sabaq/backend/storage/database/inmem"
	"github.com/sabaq/backend/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	ctx := context.Background()

	// set up loggers
	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	logger.Enable(!conf.Debug)
	defer func() { _ = logger.Sync() }()

	// set up repositories
	var (
		usrRepo    user.Repository
		courseRepo course.Repository
	)
	if conf.Database.InMemory() {
		db := inmemdb.Open()
		usrRepo = inmemdb.NewUserRepository(db)
		courseRepo = inmemdb.NewCourseRepository(db)
	} else {
		db, err := setUpDB(ctx, conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("closing database", err)
			}
		}()
		usrRepo = sqlxrepos.NewUserRepository(db)
		courseRepo = sqlxrepos.NewCourseRepository(db)
	}

	if conf.Cache.URL != "" {
		client, err := cache.NewClient(ctx, conf.Cache.URL)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up cache: %v", err), err)
		}
		defer func() { _ = client.Close() }()
		courseRepo = cache.NewContentRepository(courseRepo, client, conf.Cache.TTL, logger)
	}

	// set up services
	usrSvc := user.NewService(usrRepo)
	courseSvc := course.NewService(courseRepo, usrSvc, course.Options{
		DefaultPassingScore: conf.Grading.DefaultPassingScore,
		Logger:              logger,
	})

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		CourseSvc:  courseSvc,
		Validate:   validate,
		Translator: translator,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
