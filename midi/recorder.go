package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-pianoroll/debug"
	"go-pianoroll/model"
)

// Recorder captures note on/off events from an input port. Timestamps are
// milliseconds since recording started.
type Recorder struct {
	mu       sync.Mutex
	events   []model.RecordEvent
	stopFunc func()
	stopped  bool

	eventChan chan model.RecordEvent
}

func newRecorder() *Recorder {
	return &Recorder{eventChan: make(chan model.RecordEvent, 64)}
}

// Record starts listening on in
func Record(in drivers.In) (*Recorder, error) {
	r := newRecorder()
	stop, err := gomidi.ListenTo(in, r.handle)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	r.stopFunc = stop
	debug.Log("midi", "recording from %s", in.String())
	return r, nil
}

func (r *Recorder) handle(msg gomidi.Message, timestampms int32) {
	var ch, key, vel uint8
	var ev model.RecordEvent
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		ev = model.RecordEvent{On: true, Pitch: int(key), Velocity: float64(vel) / 127, At: float64(timestampms)}
	case msg.GetNoteEnd(&ch, &key):
		ev = model.RecordEvent{Pitch: int(key), At: float64(timestampms)}
	default:
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return
	}
	r.events = append(r.events, ev)
	select {
	case r.eventChan <- ev:
	default:
	}
}

// Events delivers each event as it arrives, for live display. Slow readers
// miss events; Stop still returns all of them and closes the channel.
// Events arriving after Stop are dropped.
func (r *Recorder) Events() <-chan model.RecordEvent {
	return r.eventChan
}

// Stop ends the recording and returns every captured event
func (r *Recorder) Stop() []model.RecordEvent {
	if r.stopFunc != nil {
		r.stopFunc()
		r.stopFunc = nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.stopped = true
		close(r.eventChan)
	}
	out := make([]model.RecordEvent, len(r.events))
	copy(out, r.events)
	debug.Log("midi", "recording stopped with %d events", len(out))
	return out
}
