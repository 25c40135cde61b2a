package core

import (
	"errors"
)

var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrSlotOutOfRange   = errors.New("renderable slot index out of range")
	ErrNilNode          = errors.New("scene node is nil")
	ErrNodeHasParent    = errors.New("scene node already has a parent")
	ErrNotAChild        = errors.New("scene node is not a child of this node")
	ErrSceneCycle       = errors.New("attaching scene node would create a cycle")
	ErrNegativeTimestep = errors.New("timestep must not be negative")
	ErrDuplicateName    = errors.New("name already registered")
	ErrNotFound         = errors.New("not found")
	ErrEngineStage      = errors.New("engine is in the wrong stage")
)
