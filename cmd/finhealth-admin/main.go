// Command finhealth-admin is the operator CLI: benchmark seeding, user
// provisioning and summary recomputation against a running deployment's
// database.
package main

import (
	"github.com/finhealth/finhealth/cmd/cli"
)

func main() {
	cli.Execute()
}
