package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-pianoroll/debug"
	"go-pianoroll/midi"
	"go-pianoroll/model"
)

const recordTick = 50 * time.Millisecond

type recording struct {
	rec   *midi.Recorder
	layer string
	start time.Time
}

type recordMsg model.RecordEvent

type recordTickMsg time.Time

func listenForRecord(r *midi.Recorder) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-r.Events()
		if !ok {
			return nil
		}
		return recordMsg(ev)
	}
}

func tickRecord() tea.Cmd {
	return tea.Tick(recordTick, func(t time.Time) tea.Msg {
		return recordTickMsg(t)
	})
}

func (m *Model) toggleRecording() tea.Cmd {
	if m.rec != nil {
		m.stopRecording()
		return nil
	}
	l := m.ws.Focused()
	if l == nil {
		return nil
	}

	in, err := midi.FindInput(m.cfg.Input.Port)
	if err != nil {
		m.status = "record: " + err.Error()
		return nil
	}
	r, err := midi.Record(in)
	if err != nil {
		m.status = "record: " + err.Error()
		return nil
	}

	l.Editor.ClearLive()
	m.rec = &recording{rec: r, layer: l.ID, start: time.Now()}
	m.status = "recording from " + in.String()
	return tea.Batch(listenForRecord(r), tickRecord())
}

func (m *Model) stopRecording() {
	if m.rec == nil {
		return
	}
	events := m.rec.rec.Stop()
	if l := m.ws.Layer(m.rec.layer); l != nil {
		if l.Editor.ImportRecording(events) {
			m.status = "recording imported"
		} else {
			m.status = "nothing recorded"
		}
	}
	debug.Log("tui", "recording stopped after %s", time.Since(m.rec.start).Round(time.Millisecond))
	m.rec = nil
}

func (m *Model) handleRecordEvent(ev recordMsg) tea.Cmd {
	if m.rec == nil {
		return nil
	}
	if l := m.ws.Layer(m.rec.layer); l != nil {
		at := ev.At / 1000
		if ev.On {
			l.Editor.NoteOn(ev.Pitch, ev.Velocity, at)
		} else {
			l.Editor.NoteOff(ev.Pitch, at)
		}
	}
	return listenForRecord(m.rec.rec)
}

func (m *Model) handleRecordTick() tea.Cmd {
	if m.rec == nil {
		return nil
	}
	if l := m.ws.Layer(m.rec.layer); l != nil {
		l.Editor.Advance(time.Since(m.rec.start).Seconds())
	}
	return tickRecord()
}
