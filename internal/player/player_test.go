package player

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"karolbroda.com/ticktock/internal/track"
)

func metadata() map[string]dbus.Variant {
	return map[string]dbus.Variant{
		"xesam:title":   dbus.MakeVariant("Yesterday"),
		"xesam:artist":  dbus.MakeVariant([]string{"The Beatles", "Paul McCartney"}),
		"xesam:album":   dbus.MakeVariant("Help!"),
		"mpris:artUrl":  dbus.MakeVariant("https://i.scdn.co/image/abc"),
		"mpris:length":  dbus.MakeVariant(int64(125_000_000)),
		"mpris:trackid": dbus.MakeVariant(dbus.ObjectPath("/com/spotify/track/1")),
	}
}

func newTestService() *Service {
	return &Service{service: "org.mpris.MediaPlayer2.test", eventChan: make(chan EventData, 16)}
}

func drain(s *Service) []EventData {
	var events []EventData
	for {
		select {
		case e := <-s.eventChan:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestSongFromMetadata(t *testing.T) {
	song := songFromMetadata(metadata())

	assert.Equal(t, "Yesterday", song.Title)
	assert.Equal(t, "The Beatles", song.ArtistName)
	assert.Equal(t, "Help!", song.Album)
	assert.Equal(t, "https://i.scdn.co/image/abc", song.ArtworkURL)
	assert.Equal(t, int64(125), song.DurationSecs)
	assert.Equal(t, track.IDFor("Yesterday", "The Beatles"), song.ID)
	assert.Equal(t, "Yesterday-The Beatles.lrc", song.LrcFileName())
}

func TestSongFromSparseMetadata(t *testing.T) {
	song := songFromMetadata(map[string]dbus.Variant{
		"xesam:title":  dbus.MakeVariant("Untitled"),
		"xesam:artist": dbus.MakeVariant("Solo"),
		"mpris:length": dbus.MakeVariant(uint64(60_000_000)),
	})
	assert.Equal(t, "Solo", song.ArtistName)
	assert.Equal(t, int64(60), song.DurationSecs)

	assert.False(t, songFromMetadata(nil).IsValid())
}

func TestMicros(t *testing.T) {
	assert.Equal(t, int64(5), micros(int64(5)))
	assert.Equal(t, int64(0), micros(int64(-1)))
	assert.Equal(t, int64(7), micros(uint64(7)))
	assert.Equal(t, int64(0), micros("nope"))
}

func TestStatePosition(t *testing.T) {
	now := time.Now()
	st := State{Playing: true}
	st.setPosition(10_000, now)

	assert.Equal(t, int64(12_000), st.Position(now.Add(2*time.Second)))

	st.Playing = false
	assert.Equal(t, int64(10_000), st.Position(now.Add(2*time.Second)))
}

func TestStateSeekDetection(t *testing.T) {
	now := time.Now()
	st := State{Playing: true}
	assert.False(t, st.isSeek(50_000, now))

	st.setPosition(10_000, now)
	later := now.Add(time.Second)
	assert.False(t, st.isSeek(11_200, later))
	assert.True(t, st.isSeek(60_000, later))
	assert.True(t, st.isSeek(1_000, later))
}

func TestApplyEmitsEvents(t *testing.T) {
	s := newTestService()
	now := time.Now()
	song := track.New("The Beatles", "Yesterday")

	s.apply(song, 0, true, now)
	events := drain(s)
	require.Len(t, events, 1)
	assert.Equal(t, EventTrackChanged, events[0].Type)
	assert.Equal(t, "Yesterday", events[0].Song.Title)

	// steady playback is quiet
	s.apply(song, 1000, true, now.Add(time.Second))
	assert.Empty(t, drain(s))

	s.apply(song, 90_000, true, now.Add(2*time.Second))
	events = drain(s)
	require.Len(t, events, 1)
	assert.Equal(t, EventSeeked, events[0].Type)
	assert.Equal(t, int64(90_000), events[0].PositionMillis)

	s.apply(song, 90_000, false, now.Add(2*time.Second))
	events = drain(s)
	require.Len(t, events, 1)
	assert.Equal(t, EventPlaybackStateChanged, events[0].Type)
	assert.False(t, events[0].Playing)
}

func TestPropertiesChangedSignal(t *testing.T) {
	s := newTestService()

	s.handleSignal(&dbus.Signal{
		Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
		Body: []interface{}{
			mprisPlayerIface,
			map[string]dbus.Variant{
				"Metadata":       dbus.MakeVariant(metadata()),
				"PlaybackStatus": dbus.MakeVariant("Playing"),
			},
			[]string{},
		},
	})

	events := drain(s)
	require.Len(t, events, 2)
	assert.Equal(t, EventTrackChanged, events[0].Type)
	assert.Equal(t, EventPlaybackStateChanged, events[1].Type)
	assert.True(t, events[1].Playing)

	st := s.State()
	require.NotNil(t, st.Song)
	assert.Equal(t, "Yesterday", st.Song.Title)
	assert.True(t, st.Playing)

	// the copy is detached from the service
	st.Song.Title = "changed"
	assert.Equal(t, "Yesterday", s.State().Song.Title)
}

func TestIgnoresForeignSignals(t *testing.T) {
	s := newTestService()

	s.handleSignal(nil)
	s.handleSignal(&dbus.Signal{
		Name: "org.freedesktop.DBus.Properties.PropertiesChanged",
		Body: []interface{}{"org.example.Other", map[string]dbus.Variant{}},
	})
	s.handleSignal(&dbus.Signal{Name: "org.freedesktop.DBus.Properties.PropertiesChanged"})

	assert.Empty(t, drain(s))
}

func TestSeekedSignal(t *testing.T) {
	s := newTestService()

	s.handleSignal(&dbus.Signal{
		Name: mprisPlayerIface + ".Seeked",
		Body: []interface{}{int64(42_000_000)},
	})

	events := drain(s)
	require.Len(t, events, 1)
	assert.Equal(t, EventSeeked, events[0].Type)
	assert.Equal(t, int64(42_000), events[0].PositionMillis)
	assert.Equal(t, int64(42_000), s.State().PositionMillis)
}

func TestNewServiceValidates(t *testing.T) {
	_, err := NewService(nil, "org.mpris.MediaPlayer2.spotify")
	assert.Error(t, err)

	_, err = ListPlayers(nil)
	assert.Error(t, err)
}
