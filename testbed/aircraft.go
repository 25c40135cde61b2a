package testbed

import (
	"fmt"

	"github.com/spaghettifunk/formation/engine/core"
)

type AircraftType uint8

const (
	AircraftEagle AircraftType = iota
	AircraftRaptor
)

func (t AircraftType) String() string {
	switch t {
	case AircraftEagle:
		return "Eagle"
	case AircraftRaptor:
		return "Raptor"
	default:
		return fmt.Sprintf("AircraftType(%d)", uint8(t))
	}
}

// Material is the name of the builtin material the aircraft is drawn with.
func (t AircraftType) Material() string {
	switch t {
	case AircraftRaptor:
		return RaptorMaterialName
	default:
		return EagleMaterialName
	}
}

func ParseAircraftType(name string) (AircraftType, error) {
	switch name {
	case "Eagle", "eagle":
		return AircraftEagle, nil
	case "Raptor", "raptor":
		return AircraftRaptor, nil
	default:
		return 0, fmt.Errorf("unknown aircraft type '%s': %w", name, core.ErrInvalidConfig)
	}
}
