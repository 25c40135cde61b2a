/*
Runs the formation scenario headless on top of the engine package.
Usage: formation [config.toml]
*/
package main

import (
	"errors"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spaghettifunk/formation/engine"
	"github.com/spaghettifunk/formation/engine/core"
	"github.com/spaghettifunk/formation/testbed"
)

const defaultConfigPath = "formation.toml"

func main() {
	configPath := defaultConfigPath
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	config, err := testbed.LoadConfig(configPath)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("%s not found, using the default scenario", configPath)
		defaults := testbed.DefaultConfig()
		config, err, configPath = &defaults, nil, ""
	}
	if err != nil {
		core.LogFatal("failed to load configuration: %s", err)
	}

	tb, err := testbed.NewFormationGame(config, configPath)
	if err != nil {
		core.LogFatal("failed to create game: %s", err)
	}

	engine, err := engine.New(tb.Game)
	if err != nil {
		core.LogFatal("failed to create engine: %s", err)
	}

	if err := engine.Initialize(); err != nil {
		core.LogFatal("failed to initialize engine: %s", err)
	}

	// signal channel to capture system calls
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)

	// start shutdown goroutine
	go func() {
		// capture sigterm and other system call here
		<-sigCh
		tb.EventSystem.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
	}()

	// run engine
	if err := engine.Run(); err != nil {
		core.LogFatal("engine stopped with an error: %s", err)
	}
}
