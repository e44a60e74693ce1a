package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/sabaq/backend/core"
	"github.com/sabaq/backend/core/course"
	"github.com/sabaq/backend/core/user"
	"github.com/sabaq/backend/services/email"
	"github.com/sabaq/backend/services/logger"
	"github.com/sabaq/backend/storage/cache"
	"github.com/sabaq/backend/storage/database"
	"github.com/sabaq/backend/storage/database/inmem"
	"github.com/sabaq/backend/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	ctx := context.Background()

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	logger.Enable(!conf.Debug)

	// set up DB & repos
	var (
		db         *sql.DB
		usrRepo    user.Repository
		courseRepo course.Repository
	)
	if conf.Database.InMemory() {
		mem := inmemdb.Open()
		usrRepo = inmemdb.NewUserRepository(mem)
		courseRepo = inmemdb.NewCourseRepository(mem)
	} else {
		if err = database.CreateIfNotExist(ctx, conf); err != nil {
			logger.Fatal(fmt.Sprintf("creating database: %v", err), err)
		}
		sqlxDB, err := database.Open(ctx, conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		db = sqlxDB.DB
		usrRepo = sqlxrepos.NewUserRepository(sqlxDB)
		courseRepo = sqlxrepos.NewCourseRepository(sqlxDB)
	}

	var cacheClient cache.Client
	if conf.Cache.URL != "" {
		client, err := cache.NewClient(ctx, conf.Cache.URL)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up cache: %v", err), err)
		}
		cacheClient = client
		courseRepo = cache.NewContentRepository(courseRepo, client, conf.Cache.TTL, logger)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	core.ParseEmailTemplates(logger, conf.Debug)

	usrSvc := user.NewService(usrRepo)
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	course.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		conf:    conf,
		db:      db,
		out:     os.Stdout,
		usrSvc:  usrSvc,
		mailSvc: mailSvc,
		courseSvc: course.NewService(courseRepo, usrSvc, course.Options{
			DefaultPassingScore: conf.Grading.DefaultPassingScore,
			Logger:              logger,
		}),
		validate: validate,
		cache:    cacheClient,
	}
	code := 0
	if err = cli.run(ctx, os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		code = 1
	}
	if db != nil {
		_ = db.Close()
	}
	_ = logger.Sync()
	os.Exit(code)
}
