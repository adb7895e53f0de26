package domain

import "fmt"

// Capability identifies one home-automation domain the current room may
// or may not be configured for.
type Capability int

const (
	CapSystemCfg Capability = iota
	CapRoomData
	CapMusicData
	CapMusicCats
	CapPlayLists
	CapHVACData
	CapSecData
	CapSecArmingCode
	CapSecArmModes
	CapSecZones
	CapRoomModes
	CapWeatherData

	capCount
)

var capabilityNames = [...]string{
	"SystemCfg",
	"RoomData",
	"MusicData",
	"MusicCats",
	"PlayLists",
	"HVACData",
	"SecData",
	"SecArmingCode",
	"SecArmModes",
	"SecZones",
	"RoomModes",
	"WeatherData",
}

func (c Capability) String() string {
	if c < 0 || int(c) >= len(capabilityNames) {
		return fmt.Sprintf("Capability(%d)", int(c))
	}
	return capabilityNames[c]
}

// CapabilitySet is a fixed-size bit array of capabilities. It is built
// once after configuration load and is read-only afterwards.
type CapabilitySet uint32

// Set returns a copy of the set with the capability enabled.
func (s CapabilitySet) Set(c Capability) CapabilitySet {
	return s | (1 << uint(c))
}

// Has reports whether the capability is enabled. Handlers must check the
// flag before touching the matching room record.
func (s CapabilitySet) Has(c Capability) bool {
	return s&(1<<uint(c)) != 0
}

// List returns the enabled capability names, for logs and the status
// endpoint.
func (s CapabilitySet) List() []string {
	var out []string
	for c := Capability(0); c < capCount; c++ {
		if s.Has(c) {
			out = append(out, c.String())
		}
	}
	return out
}
