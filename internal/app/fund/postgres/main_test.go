// Copyright 2024 AlgoChit Network Ltd.
// All rights reserved.
// This material is licensed under the AlgoChit License version 1.0,
// available at https://github.com/algochit/chitfund/blob/master/LICENSE.md.

package postgres_test

import (
	"os"
	"testing"

	"github.com/go-pg/pg"

	"github.com/algochit/chitfund/internal/testutils"
)

var db *pg.DB

func TestMain(t *testing.M) {
	var cleaner func()
	db, _, cleaner = testutils.SetupDB("../../../../scripts/migrations")
	retCode := t.Run()
	cleaner()
	os.Exit(retCode)
}
