package engine

import "github.com/spaghettifunk/formation/engine/core"

type Game struct {
	ApplicationConfig *ApplicationConfig
	// Shared by the engine and the game. The engine creates one when nil.
	EventSystem *core.EventSystem
	State             interface{}
	FnBoot            Boot
	FnInitialize      Initialize
	FnUpdate          Update
	FnRender          Render
	FnShutdown        Shutdown
}

type Boot func() error
type Initialize func() error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type Shutdown func() error
