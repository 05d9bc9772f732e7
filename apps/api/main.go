package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/courseware/apps/api/echo"
	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/assignment"
	"github.com/trezcool/courseware/core/auth"
	"github.com/trezcool/courseware/core/course"
	"github.com/trezcool/courseware/core/submission"
	"github.com/trezcool/courseware/core/user"
	logsvc "github.com/trezcool/courseware/services/logger"
	mongodb "github.com/trezcool/courseware/storage/database/mongo"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	if err := conf.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	// set up loggers
	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("api"), conf)
	dbLogger := logsvc.NewRollbarLogger(zl.Named("db"), conf)
	reporting := !conf.Debug && conf.RollbarToken != ""
	logger.Enable(reporting)
	dbLogger.Enable(reporting)
	defer func() {
		_ = dbLogger.Sync()
		_ = logger.Sync()
	}()

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Mongo.ConnectTimeout)
	client, db, err := mongodb.Open(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = client.Disconnect(context.Background()); err != nil {
			dbLogger.Error("Failed to disconnect", err)
		}
	}()

	// set up storage & services
	blobs, err := newBlobStore(conf, db)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up blob store: %v", err), err)
	}
	cache, err := newCoursePageCache(conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up course cache: %v", err), err)
	}
	events, closeEvents := newEventPublisher(conf, logger)
	defer func() {
		if err = closeEvents(); err != nil {
			logger.Error(fmt.Sprintf("closing event publisher: %v", err), err)
		}
	}()

	usrSvc := user.NewService(mongodb.NewUserRepository(db), newMailService(conf, logger), conf)
	crsSvc := course.NewService(mongodb.NewCourseRepository(db), usrSvc, cache, events, logger, conf)
	asgSvc := assignment.NewService(mongodb.NewAssignmentRepository(db))
	subSvc := submission.NewService(mongodb.NewSubmissionRepository(db), blobs, events, logger, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

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

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Tokens:        auth.NewTokenService(conf),
			UserSvc:       usrSvc,
			CourseSvc:     crsSvc,
			AssignmentSvc: asgSvc,
			SubmissionSvc: subSvc,
			Validate:      validate,
			Translator:    translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Error(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Error(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
