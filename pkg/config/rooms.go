package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/seu-repo/sigec-casa/internal/domain"
)

// roomsFile is the on-disk shape of the rooms snapshot: a named set of
// rooms, each a full domain.RoomConfig.
type roomsFile struct {
	Rooms map[string]domain.RoomConfig `mapstructure:"rooms"`
}

// LoadRoom reads the rooms file and returns the named room with its
// capability flags built. Called at startup and again on every reload
// request.
func LoadRoom(path, name string) (*domain.RoomConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read rooms file: %w", err)
	}

	var file roomsFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rooms file: %w", err)
	}
	if len(file.Rooms) == 0 {
		return nil, fmt.Errorf("rooms file %s defines no rooms", path)
	}

	room, ok := file.Rooms[name]
	if !ok {
		return nil, fmt.Errorf("room %q not found in %s", name, path)
	}
	if room.Name == "" {
		room.Name = name
	}

	room.BuildCapabilities()
	return &room, nil
}
