// main.go
//
// Entry point; the schedule-sim commands are defined in cmd/.

package main

import (
	"github.com/resvsim/schedule-sim/cmd"
)

func main() {
	cmd.Execute()
}
