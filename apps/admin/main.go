package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/courseware/core"
	"github.com/trezcool/courseware/core/user"
	emailsvc "github.com/trezcool/courseware/services/email"
	logsvc "github.com/trezcool/courseware/services/logger"
	mongodb "github.com/trezcool/courseware/storage/database/mongo"
)

func main() {
	conf := core.NewConfig()
	if err := conf.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logsvc.NewZap(conf)
	if err != nil {
		log.Fatalf("setting up zap: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zl.Named("admin"), conf)
	defer func() { _ = logger.Sync() }()

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Mongo.ConnectTimeout)
	client, db, err := mongodb.Open(ctx, conf)
	cancel()
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	// start CLI
	cli := commandLine{
		usrSvc: user.NewService(mongodb.NewUserRepository(db), emailsvc.NewConsoleServiceMock(conf), conf),
	}
	if err = cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(fmt.Sprintf("error: %s", err), err)
		}
		_ = logger.Sync()
		_ = client.Disconnect(context.Background())
		os.Exit(1)
	}
}
