// Copyright (C) 2024 Datalith, Inc.
// See LICENSE for copying information.

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/datalith/catalogd/catalog"
	"github.com/datalith/catalogd/service"
)

var (
	rootCmd = &cobra.Command{
		Use:   "catalogd",
		Short: "Metadata catalog service for a tabular warehouse",
		RunE:  cmdRun,
	}

	cfgFile     string
	confDir     string
	databaseURL string
	warehouse   string
	logDev      bool
)

func init() {
	// accept both ds_style and ds-style flag spellings
	rootCmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	defaultConfDir := defaultConfigDir()
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file")
	rootCmd.Flags().StringVar(&confDir, "config-dir", defaultConfDir, "directory for configuration and the default store")
	rootCmd.Flags().StringVar(&databaseURL, "database-url", "", "record store URL (bolt://<path> or mem://)")
	rootCmd.Flags().StringVar(&warehouse, "warehouse", "file:///tmp/warehouse", "base location for derived storage locations")
	rootCmd.Flags().BoolVar(&logDev, "log.dev", false, "switch to development logging")
}

func defaultConfigDir() string {
	home, err := homedir.Dir()
	if err != nil {
		log.Println(err)
		return ".catalogd"
	}
	return filepath.Join(home, ".catalogd")
}

func cmdRun(cmd *cobra.Command, args []string) (err error) {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if databaseURL == "" {
		databaseURL = "bolt://" + filepath.Join(confDir, "catalog.db")
	}
	if err := os.MkdirAll(confDir, 0700); err != nil {
		return err
	}

	config := service.Config{
		DatabaseURL: databaseURL,
		Catalog: catalog.Config{
			WarehouseURI: warehouse,
		},
	}

	store, err := service.NewStore(logger, config.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := catalog.New(logger.Named("catalog"), store, config.Catalog)
	if err := db.Init(ctx); err != nil {
		return err
	}

	endpoint := service.NewEndpoint(logger.Named("service"), db, service.NewViperValues(viper.GetViper()))
	_ = endpoint // handed to the transport collaborator

	logger.Info("catalog service ready",
		zap.String("database", databaseURL),
		zap.String("warehouse", warehouse))

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logger.Info("shutting down")
	return nil
}

func newLogger() (*zap.Logger, error) {
	if logDev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	cobra.OnInitialize(func() {
		_ = viper.BindPFlags(rootCmd.Flags())
		viper.SetEnvPrefix("catalogd")
		viper.AutomaticEnv()
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				log.Println(err)
			}
		}
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
