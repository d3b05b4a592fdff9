// Command ptest-battery runs a demonstration battery of ptest tests.
//
// Usage:
//
//	ptest-battery [filter]
//
// With a filter, only the tests whose names contain it are run. See
// ptest-battery --help for the report, config and history flags.
package main

import (
	"os"

	"github.com/roach88/ptest"
	"github.com/roach88/ptest/driver"
)

const banner = "==============\n[TEST BATTERY]\n==============\n\n"

func main() {
	reg := ptest.NewRegistry()
	register(reg)
	os.Exit(driver.MainWithOptions(reg, driver.Options{
		Name:   "ptest-battery",
		Banner: banner,
	}))
}
