// cmd/livelink/main.go
package main

import (
	"os"

	"github.com/op/go-logging"
	"github.com/spf13/cobra"
)

var log = logging.MustGetLogger("livelink")

// InitLogger installs the process-wide leveled backend.
func InitLogger(logLevel string) error {
	baseBackend := logging.NewLogBackend(os.Stdout, "", 0)
	format := logging.MustStringFormatter(
		`%{time:2006-01-02 15:04:05} %{level:.5s}     %{message}`,
	)
	backendFormatter := logging.NewBackendFormatter(baseBackend, format)

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	logLevelCode, err := logging.LogLevel(logLevel)
	if err != nil {
		return err
	}
	backendLeveled.SetLevel(logLevelCode, "")

	logging.SetBackend(backendLeveled)
	return nil
}

func main() {
	var logLevel string
	rootCmd := &cobra.Command{
		Use:           "livelink",
		Short:         "Remote control and file offload for the LiveLinkFace capture app",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return InitLogger(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "DEBUG, INFO, NOTICE, WARNING, ERROR or CRITICAL")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPushCmd())
	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Critical(err)
		os.Exit(1)
	}
}
