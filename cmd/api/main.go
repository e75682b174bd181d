// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	echoPrometheus "github.com/globocom/echo-prometheus"

	"github.com/algochit/chitfund/configuration"
	"github.com/algochit/chitfund/internal/app/api"
	"github.com/algochit/chitfund/internal/app/fund"
	"github.com/algochit/chitfund/internal/app/fund/collecting"
	"github.com/algochit/chitfund/internal/app/fund/postgres"
	"github.com/algochit/chitfund/internal/app/fund/store"
	"github.com/algochit/chitfund/internal/dbconn"
	"github.com/algochit/chitfund/internal/pkg/cycle"
	"github.com/algochit/chitfund/observability"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := configuration.Load(logger)
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	db, err := dbconn.Connect(cfg.DB)
	if err != nil {
		logger.Fatal(err)
	}
	cycle.UntilConnectionError(func() error {
		_, err := db.Exec("select 1")
		return err
	}, cfg.DB.AttemptInterval, cfg.DB.Attempts, logger)

	obs := observability.Make(logger)
	records := postgres.NewRecordStorage(obs, db)
	calls, err := store.NewCachedCallLog(postgres.NewCallStorage(obs, db), cfg.Fund.CallCacheSize)
	if err != nil {
		logger.Fatal(err)
	}
	treasury := store.NewMemoryTreasury()

	machine := fund.NewMachine(obs, records, treasury, calls)
	collector := collecting.NewBidCollector(obs, records, calls)
	settler := collecting.NewSettler(obs, machine, collector, cfg.Fund.BaseFee, cfg.Fund.FeePerTransfer)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(echoPrometheus.MetricsMiddleware())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api.RegisterHandlers(e, api.NewFundServer(logger, machine, collector, settler))
	e.Logger.Fatal(e.Start(cfg.API.Listen))
}
