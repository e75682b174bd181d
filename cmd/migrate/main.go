// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package main

import (
	"flag"

	"github.com/go-pg/migrations"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/algochit/chitfund/configuration"
	"github.com/algochit/chitfund/internal/dbconn"
)

var migrationDir = flag.String("dir", "scripts/migrations", "directory with migrations")
var doInit = flag.Bool("init", false, "perform db init (for empty db)")

func main() {
	flag.Parse()

	logger := logrus.New()
	cfg := configuration.Load(logger)

	db, err := dbconn.Connect(cfg.DB)
	if err != nil {
		logger.Fatal(err)
	}
	defer db.Close()

	migrationCollection := migrations.NewCollection()
	if *doInit {
		_, _, err := migrationCollection.Run(db, "init")
		if err != nil {
			logger.Fatal(errors.Wrap(err, "Could not init migrations"))
		}
	}

	err = migrationCollection.DiscoverSQLMigrations(*migrationDir)
	if err != nil {
		logger.Fatal(errors.Wrap(err, "Failed to read migrations"))
	}

	_, _, err = migrationCollection.Run(db, "up")
	if err != nil {
		logger.Fatal(errors.Wrap(err, "Could not migrate"))
	}
	logger.Info("migrated successfully!")
}
