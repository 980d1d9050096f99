// Command rup-bridge hosts a message queue Bridge as a supervised child
// process. The top-level invocation is the parent: it spawns itself as
// a re-exec'd child, waits for the bridge's alive signal, and tears the
// child down on SIGINT/SIGTERM. Grounded on the teacher's
// cmd/zmux-server/main.go for the zap setup and graceful-shutdown shape.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rupsys/rup/internal/bridge"
	"github.com/rupsys/rup/internal/supervisor"
)

const entrypointName = "rup-bridge"

func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.TimeKey = ""
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	log, err := cfg.Build()
	if err != nil {
		log = zap.NewNop()
	}
	return log
}

func init() {
	supervisor.Register(entrypointName, childMain)
}

func main() {
	supervisor.MaybeRunChild()

	var channel string
	var addrDir string
	flag.StringVar(&channel, "channel", bridge.ChannelName(bridge.AgentQueue), "logical queue name to bridge")
	flag.StringVar(&addrDir, "addr-dir", "", "directory for the <channel>.url address file (default: cwd)")
	flag.Parse()

	log := newLogger().Named("main")
	defer log.Sync()

	proc := supervisor.NewProcess(channel, entrypointName, supervisor.Worker{}, log, supervisor.Options{})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	startCtx, startCancel := context.WithTimeout(ctx, 10*time.Second)
	defer startCancel()
	if err := proc.Start(startCtx, 0); err != nil {
		log.Fatal("bridge process failed to start", zap.Error(err))
	}
	log.Info("bridge running", zap.String("channel", channel))

	<-ctx.Done()
	log.Info("shutting down")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := proc.Stop(stopCtx, 0); err != nil {
		log.Error("bridge process failed to stop cleanly", zap.Error(err))
		os.Exit(1)
	}
}

// childMain is the registered entrypoint that actually runs the
// bridge, invoked in the re-exec'd child process.
func childMain(p *supervisor.Process) int {
	var channel string
	var addrDir string
	flag.StringVar(&channel, "channel", bridge.ChannelName(bridge.AgentQueue), "logical queue name to bridge")
	flag.StringVar(&addrDir, "addr-dir", "", "directory for the <channel>.url address file (default: cwd)")
	flag.Parse()

	log := newLogger().Named("child")

	var br *bridge.Bridge
	worker := supervisor.Worker{
		InitializeChild: func(ctx context.Context) error {
			b, err := bridge.New(ctx, channel, log, bridge.Options{AddrDir: addrDir})
			if err != nil {
				return err
			}
			br = b
			return nil
		},
		Work: func(ctx context.Context) (supervisor.Action, error) {
			// bridge.Wait both rate-limits this loop (spec.md's "MUST
			// NOT busy-spin" requirement) and is the stop signal: it
			// returns true once the relay has exited on its own (e.g. a
			// fatal transport error), at which point there is nothing
			// left to supervise.
			if br != nil && br.Wait(500*time.Millisecond) {
				return supervisor.Stop, nil
			}
			return supervisor.Continue, nil
		},
		FinalizeChild: func() {
			if br != nil {
				_ = br.Close()
			}
		},
	}

	return supervisor.RunChild(p, worker)
}
