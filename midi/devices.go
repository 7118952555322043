package midi

import (
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// ErrScanTimeout is returned when the MIDI driver does not answer a port scan
var ErrScanTimeout = errors.New("midi port scan timed out")

// ScanTimeout bounds how long a port scan may block (CoreMIDI can hang)
var ScanTimeout = 3 * time.Second

// Ports lists the connected input and output ports
type Ports struct {
	In  []string
	Out []string
}

func scan() (ins []drivers.In, outs []drivers.Out, err error) {
	type portsResult struct {
		ins  []drivers.In
		outs []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, nil
	case <-time.After(ScanTimeout):
		// user needs to run: sudo killall coreaudiod midiserver
		return nil, nil, ErrScanTimeout
	}
}

// Devices returns the names of every MIDI port the driver sees
func Devices() (Ports, error) {
	ins, outs, err := scan()
	if err != nil {
		return Ports{}, err
	}
	var p Ports
	for _, in := range ins {
		p.In = append(p.In, in.String())
	}
	for _, out := range outs {
		p.Out = append(p.Out, out.String())
	}
	return p, nil
}

// FindInput returns the first input port whose name contains name,
// case-insensitively. An empty name picks the first port.
func FindInput(name string) (drivers.In, error) {
	ins, _, err := scan()
	if err != nil {
		return nil, err
	}
	name = strings.ToLower(name)
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), name) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("no input port matching %q", name)
}

// Close releases the MIDI driver
func Close() {
	gomidi.CloseDriver()
}
