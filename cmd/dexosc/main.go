// Command dexosc shows Dexcom Share glucose readings in the VRChat chatbox.
//
// Usage:
//
//	dexosc setup [--region us] [--username U]
//	dexosc run [--quest-ip auto] [--quest-port 9000] [--interval 30s] [--min-delta 2]
//	dexosc discover [--timeout 3s]
//	dexosc history view|stats|export <file>
//	dexosc config show
//	dexosc version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dexcom-osc-bridge/dexosc-go/cmd/dexosc/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.NewRootCmd(commands.DefaultDeps()).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, strings.TrimRight(err.Error(), "\n"))
		os.Exit(1)
	}
}
