package player

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"karolbroda.com/ticktock/internal/log"
	"karolbroda.com/ticktock/internal/track"
)

const (
	mprisPrefix      = "org.mpris.MediaPlayer2."
	mprisPath        = "/org/mpris/MediaPlayer2"
	mprisPlayerIface = "org.mpris.MediaPlayer2.Player"

	// jumps bigger than this between polls count as a seek
	seekThresholdMillis = 3000
)

type Event int

const (
	EventTrackChanged Event = iota
	EventSeeked
	EventPlaybackStateChanged
)

type EventData struct {
	Type           Event
	Song           *track.Song
	PositionMillis int64
	Playing        bool
}

// State is the last known player state. PositionMillis is only as fresh as
// the last poll or signal; Position extrapolates from there.
type State struct {
	Song           *track.Song
	PositionMillis int64
	Playing        bool
	updatedAt      time.Time
}

// Position estimates the playback position at now.
func (s State) Position(now time.Time) int64 {
	if !s.Playing || s.updatedAt.IsZero() {
		return s.PositionMillis
	}
	return s.PositionMillis + now.Sub(s.updatedAt).Milliseconds()
}

func (s State) isSeek(pos int64, now time.Time) bool {
	if s.updatedAt.IsZero() {
		return false
	}
	diff := pos - s.Position(now)
	if diff < 0 {
		diff = -diff
	}
	return diff > seekThresholdMillis
}

func (s *State) setPosition(pos int64, now time.Time) {
	s.PositionMillis = pos
	s.updatedAt = now
}

// ListPlayers returns the MPRIS bus names currently on the session bus.
func ListPlayers(bus *dbus.Conn) ([]string, error) {
	if bus == nil {
		return nil, errors.New("nil dbus connection")
	}

	var names []string
	err := bus.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return nil, fmt.Errorf("failed to list bus names: %w", err)
	}

	var players []string
	for _, name := range names {
		if strings.HasPrefix(name, mprisPrefix) {
			players = append(players, name)
		}
	}
	sort.Strings(players)
	return players, nil
}

// Service follows one MPRIS player through property-change signals and
// polling.
type Service struct {
	bus        *dbus.Conn
	service    string
	signalChan chan *dbus.Signal
	stopChan   chan struct{}
	stopOnce   sync.Once
	eventChan  chan EventData
	state      State
	mu         sync.RWMutex
}

func NewService(bus *dbus.Conn, mprisService string) (*Service, error) {
	if bus == nil {
		return nil, errors.New("nil dbus connection")
	}
	if mprisService == "" {
		return nil, errors.New("empty mpris service name")
	}

	return &Service{
		bus:       bus,
		service:   mprisService,
		eventChan: make(chan EventData, 16),
	}, nil
}

func (s *Service) Start() error {
	s.signalChan = make(chan *dbus.Signal, 10)
	s.stopChan = make(chan struct{})
	s.bus.Signal(s.signalChan)

	matches := []string{
		fmt.Sprintf(
			"type='signal',sender='%s',interface='org.freedesktop.DBus.Properties',member='PropertiesChanged',path='%s'",
			s.service, mprisPath,
		),
		fmt.Sprintf(
			"type='signal',sender='%s',interface='%s',member='Seeked',path='%s'",
			s.service, mprisPlayerIface, mprisPath,
		),
	}
	for _, match := range matches {
		if err := s.bus.BusObject().Call("org.freedesktop.DBus.AddMatch", 0, match).Err; err != nil {
			return fmt.Errorf("failed to add signal match: %w", err)
		}
	}

	go s.signalLoop()
	return nil
}

func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		if s.stopChan != nil {
			close(s.stopChan)
			s.bus.RemoveSignal(s.signalChan)
		}
	})
}

func (s *Service) Events() <-chan EventData {
	return s.eventChan
}

// State returns a copy of the current state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	if st.Song != nil {
		song := *st.Song
		st.Song = &song
	}
	return st
}

func (s *Service) property(name string) (interface{}, error) {
	obj := s.bus.Object(s.service, mprisPath)
	prop, err := obj.GetProperty(mprisPlayerIface + "." + name)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s property: %w", name, err)
	}
	value := prop.Value()
	if value == nil {
		return nil, fmt.Errorf("%s value is nil", name)
	}
	return value, nil
}

func (s *Service) CurrentSong() (*track.Song, error) {
	value, err := s.property("Metadata")
	if err != nil {
		return nil, err
	}

	metadata, ok := value.(map[string]dbus.Variant)
	if !ok {
		return nil, fmt.Errorf("unexpected metadata type %T", value)
	}

	song := songFromMetadata(metadata)
	if !song.IsValid() {
		return nil, fmt.Errorf("missing title or artist in metadata (title=%q, artist=%q)", song.Title, song.ArtistName)
	}
	return song, nil
}

// CurrentPosition returns the playback position in milliseconds.
func (s *Service) CurrentPosition() (int64, error) {
	value, err := s.property("Position")
	if err != nil {
		return 0, err
	}
	return micros(value) / 1000, nil
}

func (s *Service) Playing() (bool, error) {
	value, err := s.property("PlaybackStatus")
	if err != nil {
		return false, err
	}
	status, _ := value.(string)
	return status == "Playing", nil
}

// Poll refreshes the state from the player and emits events for what
// changed since the last poll.
func (s *Service) Poll() error {
	song, err := s.CurrentSong()
	if err != nil {
		return err
	}
	pos, err := s.CurrentPosition()
	if err != nil {
		return err
	}
	playing, err := s.Playing()
	if err != nil {
		return err
	}

	s.apply(song, pos, playing, time.Now())
	return nil
}

func (s *Service) apply(song *track.Song, pos int64, playing bool, now time.Time) {
	s.mu.Lock()
	changed := !song.IsSameTrack(s.state.Song)
	seeked := !changed && s.state.isSeek(pos, now)
	toggled := s.state.Playing != playing

	if changed {
		s.state.Song = song
	}
	s.state.Playing = playing
	s.state.setPosition(pos, now)
	s.mu.Unlock()

	switch {
	case changed:
		s.emit(EventData{Type: EventTrackChanged, Song: song, PositionMillis: pos, Playing: playing})
	case seeked:
		s.emit(EventData{Type: EventSeeked, PositionMillis: pos})
	}
	if toggled && !changed {
		s.emit(EventData{Type: EventPlaybackStateChanged, Playing: playing})
	}
}

func (s *Service) signalLoop() {
	for {
		select {
		case sig, ok := <-s.signalChan:
			if !ok {
				return
			}
			s.handleSignal(sig)
		case <-s.stopChan:
			return
		}
	}
}

func (s *Service) handleSignal(sig *dbus.Signal) {
	if sig == nil {
		return
	}

	switch sig.Name {
	case "org.freedesktop.DBus.Properties.PropertiesChanged":
		s.handlePropertiesChanged(sig.Body)
	case mprisPlayerIface + ".Seeked":
		s.handleSeeked(sig.Body)
	}
}

func (s *Service) handlePropertiesChanged(body []interface{}) {
	if len(body) < 2 {
		return
	}

	iface, ok := body[0].(string)
	if !ok || iface != mprisPlayerIface {
		return
	}

	changed, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return
	}

	now := time.Now()

	if variant, exists := changed["Metadata"]; exists {
		metadata, ok := variant.Value().(map[string]dbus.Variant)
		if ok {
			song := songFromMetadata(metadata)
			if song.IsValid() {
				s.mu.Lock()
				isNew := !song.IsSameTrack(s.state.Song)
				if isNew {
					s.state.Song = song
					s.state.setPosition(0, now)
				}
				s.mu.Unlock()

				if isNew {
					s.emit(EventData{Type: EventTrackChanged, Song: song})
				}
			}
		}
	}

	if variant, exists := changed["PlaybackStatus"]; exists {
		if status, ok := variant.Value().(string); ok {
			playing := status == "Playing"
			s.mu.Lock()
			// freeze or restart the extrapolated position
			s.state.setPosition(s.state.Position(now), now)
			s.state.Playing = playing
			s.mu.Unlock()

			s.emit(EventData{Type: EventPlaybackStateChanged, Playing: playing})
		}
	}
}

func (s *Service) handleSeeked(body []interface{}) {
	if len(body) < 1 {
		return
	}

	pos := micros(body[0]) / 1000

	s.mu.Lock()
	s.state.setPosition(pos, time.Now())
	s.mu.Unlock()

	s.emit(EventData{Type: EventSeeked, PositionMillis: pos})
}

// emit drops the event when nobody keeps up with the channel.
func (s *Service) emit(event EventData) {
	select {
	case s.eventChan <- event:
	default:
		log.L().Debug("player event dropped", zap.Int("type", int(event.Type)))
	}
}

// Identity is the player's human readable name, or "" if it has none.
func Identity(bus *dbus.Conn, service string) string {
	variant, err := bus.Object(service, mprisPath).GetProperty("org.mpris.MediaPlayer2.Identity")
	if err != nil {
		return ""
	}
	identity, _ := variant.Value().(string)
	return identity
}
