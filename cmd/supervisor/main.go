// Command supervisor is the per-server process host: it connects to the
// parent agent's IPC endpoint, loads a ServerConfig, and runs the
// lifecycle state machine until the connection ends.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/SandboxServers/MeridianConsole-sub006/internal/applog"
	"github.com/SandboxServers/MeridianConsole-sub006/pkg/process"
)

const connectTimeout = 30 * time.Second

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

func run(args []string, stderr *os.File) int {
	fs := flag.NewFlagSet("supervisor", flag.ContinueOnError)
	fs.SetOutput(stderr)

	serverID := fs.String("server-id", "", "opaque identifier for the server this process hosts")
	pipeName := fs.String("pipe", "", "local IPC endpoint name (named pipe / unix socket path)")
	configPath := fs.String("config", "", "absolute path to the ServerConfig file")

	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: supervisor --server-id=<opaque> --pipe=<endpoint-name> --config=<absolute-path>")
	}

	if err := fs.Parse(args); err != nil {
		return 1
	}
	if *serverID == "" || *pipeName == "" || *configPath == "" {
		fs.Usage()
		return 1
	}

	log := applog.New("supervisor", hclog.Info).With("serverId", *serverID)

	cfg, err := process.LoadServerConfig(*configPath)
	if err != nil {
		log.Error("loading server config", "error", err.Error())
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	conn, err := dialIPC(connectCtx, *pipeName)
	if err != nil {
		log.Error("connecting to IPC endpoint", "error", err.Error())
		return 1
	}
	defer conn.Close()

	sup := process.NewSupervisor(*serverID, cfg, conn, log)
	if err := sup.Run(ctx); err != nil {
		log.Error("supervisor run ended with error", "error", err.Error())
	}

	return 0
}
