// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package configuration

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/algochit/chitfund/internal/pkg/cycle"
)

type Configuration struct {
	LogLevel string
	API      API
	DB       DB
	Fund     Fund
}

type API struct {
	Listen string
}

type DB struct {
	URL      string
	PoolSize int
	Attempts cycle.Limit
	// Interval between failed connection attempts
	AttemptInterval time.Duration
}

type Fund struct {
	// Execution fee units for settlement budgeting
	BaseFee        uint64
	FeePerTransfer uint64
	// Size of the LRU cache in front of the transaction log
	CallCacheSize int
}

func Default() *Configuration {
	return &Configuration{
		LogLevel: logrus.InfoLevel.String(),
		API: API{
			Listen: ":8080",
		},
		DB: DB{
			URL:             "postgres://postgres@localhost/postgres?sslmode=disable",
			PoolSize:        100,
			Attempts:        5,
			AttemptInterval: 3 * time.Second,
		},
		Fund: Fund{
			BaseFee:        1000,
			FeePerTransfer: 1000,
			CallCacheSize:  1024,
		},
	}
}
