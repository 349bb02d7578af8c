// Command master reads the framework configuration naming the slave
// invocations an openPASS experiment consists of and reports what it would
// run. Spawning and supervising slave processes is the operating system's
// job (a process-management non-goal of the scheduler core this repository
// builds); master stops at resolving and validating that configuration.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hlrs-vis/openpass-sub007/config"
	"github.com/hlrs-vis/openpass-sub007/internal/logging"
)

const defaultFrameworkConfig = "OpenPassFramework.json"

func main() {
	var frameworkConfigPath string

	cmd := &cobra.Command{
		Use:   "master",
		Short: "Resolve an openPASS framework configuration's slave invocations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(frameworkConfigPath)
		},
	}
	cmd.Flags().StringVar(&frameworkConfigPath, "config", defaultFrameworkConfig, "path to the master's framework configuration")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string) error {
	log := logging.NewFromEnv()
	ctx := context.Background()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("master: open framework config: %w", err)
	}
	defer file.Close()

	framework, err := config.LoadFrameworkConfig(file)
	if err != nil {
		return fmt.Errorf("master: %w", err)
	}

	log.Info(ctx, "resolved framework configuration",
		logging.Int("logLevel", framework.LogLevel),
		logging.String("masterLogFile", framework.MasterLogFile),
		logging.String("slaveCommand", framework.SlaveCommand),
		logging.String("librariesRoot", framework.LibrariesRoot),
		logging.Int("slaveCount", len(framework.Slaves)),
	)
	for i, slave := range framework.Slaves {
		log.Info(ctx, "slave invocation",
			logging.Int("index", i),
			logging.String("logFile", slave.LogFile),
			logging.String("configs", slave.ConfigsPath),
			logging.String("results", slave.ResultsPath),
		)
	}
	return nil
}
