package domain

import (
	"fmt"
	"strings"
)

// ActionDescriptor names a global action on the automation bus plus the
// moniker of the driver that runs it.
type ActionDescriptor struct {
	Moniker string `json:"moniker" mapstructure:"moniker"`
	Path    string `json:"path" mapstructure:"path"`
}

// LightInfo describes one controllable light in the room.
type LightInfo struct {
	Name        string `json:"name" mapstructure:"name"`
	Moniker     string `json:"moniker" mapstructure:"moniker"`
	SwitchField string `json:"switch_field" mapstructure:"switch_field"`
	DimField    string `json:"dim_field" mapstructure:"dim_field"`
	Dimmable    bool   `json:"dimmable" mapstructure:"dimmable"`
}

// HVACInfo describes the room's thermostat endpoint.
type HVACInfo struct {
	Moniker       string `json:"moniker" mapstructure:"moniker"`
	SubUnit       string `json:"sub_unit" mapstructure:"sub_unit"`
	HighSetPoint  string `json:"high_set_point" mapstructure:"high_set_point"`
	LowSetPoint   string `json:"low_set_point" mapstructure:"low_set_point"`
	CurrentTempFl string `json:"current_temp" mapstructure:"current_temp"`
}

// SecurityZone is one named zone of the room's security area.
type SecurityZone struct {
	Name        string `json:"name" mapstructure:"name"`
	StatusField string `json:"status_field" mapstructure:"status_field"`
}

// SecurityInfo describes the room's security area. ArmingCodeHash is a
// bcrypt hash of the spoken disarm code; the plain code is never stored.
type SecurityInfo struct {
	Moniker        string            `json:"moniker" mapstructure:"moniker"`
	Area           string            `json:"area" mapstructure:"area"`
	ArmingCodeHash string            `json:"arming_code_hash" mapstructure:"arming_code_hash"`
	ArmModes       map[string]string `json:"arm_modes" mapstructure:"arm_modes"`
	Zones          []SecurityZone    `json:"zones" mapstructure:"zones"`
}

// Zone returns the zone with the given spoken name, or nil.
func (s *SecurityInfo) Zone(name string) *SecurityZone {
	for i := range s.Zones {
		if strings.EqualFold(s.Zones[i].Name, name) {
			return &s.Zones[i]
		}
	}
	return nil
}

// MediaItem is a playlist or category the user can ask for by name.
type MediaItem struct {
	Name string `json:"name" mapstructure:"name"`
	ID   string `json:"id" mapstructure:"id"`
}

// MediaInfo describes the room's media repo/renderer pair.
type MediaInfo struct {
	RepoMoniker     string      `json:"repo_moniker" mapstructure:"repo_moniker"`
	RendererMoniker string      `json:"renderer_moniker" mapstructure:"renderer_moniker"`
	Playlists       []MediaItem `json:"playlists" mapstructure:"playlists"`
	Categories      []MediaItem `json:"categories" mapstructure:"categories"`
}

func findItem(items []MediaItem, name string) *MediaItem {
	for i := range items {
		if strings.EqualFold(items[i].Name, name) {
			return &items[i]
		}
	}
	return nil
}

// Playlist returns the named playlist, or nil.
func (m *MediaInfo) Playlist(name string) *MediaItem { return findItem(m.Playlists, name) }

// Category returns the named category, or nil.
func (m *MediaInfo) Category(name string) *MediaItem { return findItem(m.Categories, name) }

// WeatherInfo describes the weather driver feeding current/forecast
// queries.
type WeatherInfo struct {
	Moniker       string `json:"moniker" mapstructure:"moniker"`
	CurrentField  string `json:"current_field" mapstructure:"current_field"`
	ForecastField string `json:"forecast_field" mapstructure:"forecast_field"`
}

// RoomConfig is the read-only per-room snapshot the dialogue core runs
// against. The pointers for unconfigured domains are nil; callers must
// check the capability flag first, the accessors panic otherwise.
type RoomConfig struct {
	Name      string                      `json:"name" mapstructure:"name"`
	Lights    []LightInfo                 `json:"lights" mapstructure:"lights"`
	HVAC      *HVACInfo                   `json:"hvac" mapstructure:"hvac"`
	Security  *SecurityInfo               `json:"security" mapstructure:"security"`
	Media     *MediaInfo                  `json:"media" mapstructure:"media"`
	Weather   *WeatherInfo                `json:"weather" mapstructure:"weather"`
	RoomModes map[string]ActionDescriptor `json:"room_modes" mapstructure:"room_modes"`

	caps CapabilitySet
}

// BuildCapabilities derives and caches the capability flags from the
// populated records. Call once after load, before handing the snapshot to
// the controller.
func (r *RoomConfig) BuildCapabilities() CapabilitySet {
	var caps CapabilitySet
	caps = caps.Set(CapSystemCfg)
	if r.Name != "" {
		caps = caps.Set(CapRoomData)
	}
	if r.HVAC != nil {
		caps = caps.Set(CapHVACData)
	}
	if r.Media != nil {
		caps = caps.Set(CapMusicData)
		if len(r.Media.Categories) > 0 {
			caps = caps.Set(CapMusicCats)
		}
		if len(r.Media.Playlists) > 0 {
			caps = caps.Set(CapPlayLists)
		}
	}
	if r.Security != nil {
		caps = caps.Set(CapSecData)
		if r.Security.ArmingCodeHash != "" {
			caps = caps.Set(CapSecArmingCode)
		}
		if len(r.Security.ArmModes) > 0 {
			caps = caps.Set(CapSecArmModes)
		}
		if len(r.Security.Zones) > 0 {
			caps = caps.Set(CapSecZones)
		}
	}
	if len(r.RoomModes) > 0 {
		caps = caps.Set(CapRoomModes)
	}
	if r.Weather != nil {
		caps = caps.Set(CapWeatherData)
	}
	r.caps = caps
	return caps
}

// Capabilities returns the cached flag set.
func (r *RoomConfig) Capabilities() CapabilitySet { return r.caps }

func (r *RoomConfig) mustHave(c Capability) {
	if !r.caps.Has(c) {
		panic(fmt.Sprintf("room %q: capability %s not configured; caller must gate on the flag", r.Name, c))
	}
}

// HVACData returns the thermostat record. Panics if CapHVACData is unset.
func (r *RoomConfig) HVACData() *HVACInfo {
	r.mustHave(CapHVACData)
	return r.HVAC
}

// SecData returns the security record. Panics if CapSecData is unset.
func (r *RoomConfig) SecData() *SecurityInfo {
	r.mustHave(CapSecData)
	return r.Security
}

// MusicData returns the media record. Panics if CapMusicData is unset.
func (r *RoomConfig) MusicData() *MediaInfo {
	r.mustHave(CapMusicData)
	return r.Media
}

// WeatherData returns the weather record. Panics if CapWeatherData is
// unset.
func (r *RoomConfig) WeatherData() *WeatherInfo {
	r.mustHave(CapWeatherData)
	return r.Weather
}

// Light returns the light with the given spoken name, or nil.
func (r *RoomConfig) Light(name string) *LightInfo {
	for i := range r.Lights {
		if strings.EqualFold(r.Lights[i].Name, name) {
			return &r.Lights[i]
		}
	}
	return nil
}
