// Copyright 2025 The kivi Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Command kivictl reads, writes and watches keys in an etcd v2
// compatible cluster through the kivi client library.
package main

import (
	"crypto/tls"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gokivi/kivi"
	"github.com/gokivi/kivi/retry"
	"github.com/gokivi/kivi/timeout"
)

var (
	// client is built by setup before any subcommand runs.
	client *kivi.Client

	rootCmd = &cobra.Command{
		Use:   "kivictl",
		Short: "command-line client for an etcd v2 key space",
		Long: `kivictl reads, writes and watches keys in an etcd v2 compatible
cluster through the kivi client library.

Every flag can also be set through the environment with the KIVI_
prefix (for example KIVI_ENDPOINTS), or through a .env file in the
working directory.`,
		SilenceUsage:      true,
		PersistentPreRunE: setup,
		PersistentPostRun: teardown,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("endpoints", "http://127.0.0.1:4001", "comma-separated cluster endpoint URLs")
	rootCmd.PersistentFlags().Duration("dial-timeout", kivi.DefaultDialTimeout, "connect timeout per attempt")
	rootCmd.PersistentFlags().Duration("timeout", 0, "response timeout per attempt (0 waits indefinitely)")
	rootCmd.PersistentFlags().Int("retries", retry.DefaultTimes, "how many times to retry a failed attempt")
	rootCmd.PersistentFlags().Bool("insecure-skip-verify", false, "accept any TLS certificate the cluster presents")
	rootCmd.PersistentFlags().Bool("json", false, "print responses as JSON")
	rootCmd.PersistentFlags().CountP("verbose", "v", "log more (repeat for connection-level detail)")

	rootCmd.AddCommand(getCmd, setCmd, mkCmd, rmCmd, watchCmd, versionCmd)
}

// initConfig layers the environment over the flag defaults: .env files
// first, then KIVI_-prefixed variables.
func initConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("kivi")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// setup binds the executed command's flags into viper and builds the
// shared client from the resolved configuration.
func setup(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	opts := []kivi.Option{
		kivi.WithDialTimeout(viper.GetDuration("dial-timeout")),
		kivi.WithRetryPolicy(retry.NewPolicy(retry.Times(viper.GetInt("retries")), retry.DefaultWaiter)),
		kivi.WithLogger(newLogger()),
	}
	if d := viper.GetDuration("timeout"); d > 0 {
		opts = append(opts, kivi.WithTimeoutPolicy(timeout.Fixed(d)))
	}
	if viper.GetBool("insecure-skip-verify") {
		opts = append(opts, kivi.WithTLSConfig(&tls.Config{InsecureSkipVerify: true}))
	}

	var err error
	client, err = kivi.New(strings.Split(viper.GetString("endpoints"), ","), opts...)
	return err
}

func teardown(*cobra.Command, []string) {
	if client != nil {
		client.Close()
	}
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	switch viper.GetInt("verbose") {
	case 0:
	case 1:
		level = zerolog.InfoLevel
	default:
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
