package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hightide-robotics/reefbot/internal/deploy"
	"github.com/hightide-robotics/reefbot/internal/log"
	"github.com/hightide-robotics/reefbot/pkg/robot"
	"github.com/hightide-robotics/reefbot/pkg/telemetry"
)

func main() {
	deployDir := flag.String("deploy", deploy.Dir(), "Deploy configuration directory")
	canIface := flag.String("can", "can0", "CAN interface for the intake motor")
	sim := flag.Bool("sim", false, "Run with simulated hardware")
	dashboard := flag.String("dashboard", ":5800", "Dashboard listen address (empty to disable)")
	verbosity := flag.String("verbosity", "high", "Telemetry verbosity: none, low, high")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	flag.Parse()

	log.Init(*logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := robot.New(ctx, robot.Config{
		DeployDir:     *deployDir,
		CANInterface:  *canIface,
		Simulation:    *sim,
		DashboardAddr: *dashboard,
		Verbosity:     parseVerbosity(*verbosity),
	})
	if err != nil {
		log.Fatal("robot startup failed", "err", err)
	}

	container.Start()
	container.BindTeleop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutting down")
	container.Stop()
}

func parseVerbosity(s string) telemetry.Verbosity {
	switch s {
	case "none":
		return telemetry.None
	case "low":
		return telemetry.Low
	default:
		return telemetry.High
	}
}
