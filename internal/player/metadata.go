package player

import (
	"github.com/godbus/dbus/v5"

	"karolbroda.com/ticktock/internal/track"
)

// songFromMetadata maps an MPRIS metadata dictionary to a song. MPRIS track
// ids are object paths, so the numeric id is derived from title and artist.
func songFromMetadata(metadata map[string]dbus.Variant) *track.Song {
	title := extractString(metadata, "xesam:title")
	artist := extractArtist(metadata, "xesam:artist")

	song := track.New(artist, title)
	song.Album = extractString(metadata, "xesam:album")
	song.ArtworkURL = extractString(metadata, "mpris:artUrl")
	song.DurationSecs = extractMicros(metadata, "mpris:length") / 1_000_000
	return song
}

func extractString(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	text, _ := variant.Value().(string)
	return text
}

func extractArtist(metadata map[string]dbus.Variant, key string) string {
	variant, exists := metadata[key]
	if !exists {
		return ""
	}

	switch typed := variant.Value().(type) {
	case []string:
		if len(typed) > 0 {
			return typed[0]
		}
	case string:
		return typed
	}
	return ""
}

// extractMicros reads an MPRIS time value. Players disagree on the integer
// type, and negative values mean unknown.
func extractMicros(metadata map[string]dbus.Variant, key string) int64 {
	variant, exists := metadata[key]
	if !exists {
		return 0
	}
	return micros(variant.Value())
}

func micros(raw interface{}) int64 {
	switch typed := raw.(type) {
	case int64:
		if typed > 0 {
			return typed
		}
	case uint64:
		return int64(typed)
	case int32:
		if typed > 0 {
			return int64(typed)
		}
	case uint32:
		return int64(typed)
	}
	return 0
}
