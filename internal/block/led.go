package block

import (
	"encoding/binary"
	"time"
)

const (
	ledMessageType = 1
	ledEventType   = 0
)

// LED command limits.
const (
	MaxLEDColor    = 127                      // per colour channel
	MaxLEDDuration = 65535 * time.Millisecond // per timing field
)

// Pattern is an LED lighting pattern.
type Pattern int

// Lighting patterns.
const (
	PatternBlink   Pattern = 1
	PatternFirefly Pattern = 2
)

// Color is an LED colour; each channel ranges 0 to MaxLEDColor.
type Color struct {
	Red, Green, Blue int
}

// LED is the codec for MESH-100LE blocks. It decodes only the shared
// messages and adds the LED command.
type LED struct {
	Base
}

var _ Codec = (*LED)(nil)

// NewLED returns an LED codec.
func NewLED() *LED {
	l := &LED{}
	l.reset()
	return l
}

// Kind returns KindLED.
func (l *LED) Kind() Kind { return KindLED }

// LEDCommand builds the command that lights the LED in colour c for
// totalTime, switching on for onCycle and off for offCycle following
// pattern p. Durations are sent in milliseconds.
func (l *LED) LEDCommand(c Color, totalTime, onCycle, offCycle time.Duration, p Pattern) ([]byte, error) {
	for _, ch := range []struct {
		name  string
		value int
	}{
		{"red", c.Red},
		{"green", c.Green},
		{"blue", c.Blue},
	} {
		if err := CheckRange(ch.name, ch.value, 0, MaxLEDColor); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"total time", totalTime},
		{"on cycle", onCycle},
		{"off cycle", offCycle},
	}
	for _, d := range durations {
		if err := checkDuration(d.name, d.d); err != nil {
			return nil, err
		}
	}
	if err := CheckRange("pattern", int(p), int(PatternBlink), int(PatternFirefly)); err != nil {
		return nil, err
	}

	cmd := []byte{
		ledMessageType,
		ledEventType,
		byte(c.Red), 0,
		byte(c.Green), 0,
		byte(c.Blue),
	}
	for _, d := range durations {
		cmd = binary.LittleEndian.AppendUint16(cmd, uint16(d.d.Milliseconds()))
	}
	cmd = append(cmd, byte(p))
	return appendChecksum(cmd), nil
}

// checkDuration range-checks d before truncation to milliseconds. A failing
// value is reported in milliseconds rounded away from zero.
func checkDuration(name string, d time.Duration) error {
	if d >= 0 && d <= MaxLEDDuration {
		return nil
	}
	ms := int(d / time.Millisecond)
	if d%time.Millisecond != 0 {
		if d > 0 {
			ms++
		} else {
			ms--
		}
	}
	return &OutOfRangeError{Name: name, Min: 0, Max: int(MaxLEDDuration / time.Millisecond), Value: ms}
}
