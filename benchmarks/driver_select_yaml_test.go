//go:build yamljson

package jsonkit_test

import (
	"github.com/reoring/jsonkit"
)

func init() {
	if err := jsonkit.SetDefaultDriver(jsonkit.DriverYAML); err != nil {
		panic(err)
	}
}
