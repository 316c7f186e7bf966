package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/pflag"

	"github.com/rawbytedev/hexscriptex/config"
	"github.com/rawbytedev/hexscriptex/internal/plugin"
)

func main() {
	var (
		configPath string
		cosavePath string
		debug      bool
	)

	pflag.StringVarP(&configPath, "config", "c", "", "Configuration file")
	pflag.StringVar(&cosavePath, "cosave", "", "Co-save to restore before and write after the scripts run")
	pflag.BoolVar(&debug, "debug", false, "Debug mode")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] script.lua...\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	cfg := config.Default()
	if configPath != "" {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	if debug {
		cfg.Log.Development = true
		cfg.Log.Level = "debug"
	}

	logger, err := cfg.Log.Build()
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // nolint: errcheck

	p, err := plugin.New(cfg, logger)
	if err != nil {
		logger.Sugar().Fatalf("Error creating plugin: %v", err)
	}
	defer p.Close()

	var info plugin.Info
	p.Query(&info)

	if err := p.Load(); err != nil {
		logger.Sugar().Fatalf("Error loading plugin: %v", err)
	}

	if cosavePath != "" {
		f, err := os.Open(cosavePath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Sugar().Infof("No co-save at %s, starting fresh", cosavePath)
		case err != nil:
			logger.Sugar().Fatalf("Error opening co-save: %v", err)
		default:
			err = p.LoadGame(f)
			f.Close()
			if err != nil {
				logger.Sugar().Warnf("Co-save %s restored partially: %v", cosavePath, err)
			}
		}
	}

	for _, script := range pflag.Args() {
		if err := p.RunFile(script); err != nil {
			logger.Sugar().Fatalf("Error running script: %v", err)
		}
	}

	if cosavePath != "" {
		if err := writeCosave(p, cosavePath); err != nil {
			logger.Sugar().Fatalf("Error writing co-save: %v", err)
		}
	}
}

func writeCosave(p *plugin.Plugin, path string) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	if err := p.SaveGame(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, path)
}
