//go:build stdlibjson

package jsonkit_test

import (
	"github.com/reoring/jsonkit"
)

func init() {
	if err := jsonkit.SetDefaultDriver(jsonkit.DriverStdlib); err != nil {
		panic(err)
	}
}
