package main

import (
	"fmt"
	"os"

	"github.com/trezcool/alama/core"
	logsvc "github.com/trezcool/alama/services/logger"
)

var logger core.Logger = core.NopLogger{}

func main() {
	conf, err := core.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
	logger = logsvc.NewRollbarLogger(os.Stderr, conf)

	cli := commandLine{
		conf:   conf,
		logger: logger,
		out:    os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
