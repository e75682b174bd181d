// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package dbconn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/algochit/chitfund/configuration"
)

func TestConnect_BadURL(t *testing.T) {
	_, err := Connect(configuration.DB{URL: "://not-a-url"})
	require.Error(t, err)
}

func TestConnect(t *testing.T) {
	db, err := Connect(configuration.DB{
		URL:      "postgres://postgres@localhost/postgres?sslmode=disable",
		PoolSize: 10,
	})
	require.NoError(t, err)
	require.NotNil(t, db)
	_ = db.Close()
}
