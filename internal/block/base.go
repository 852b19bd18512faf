// Package block implements the message codecs for MESH-100 BLE blocks.
//
// A block exchanges fixed-length byte messages over three characteristics:
// indications carry identity, version and battery; notifications carry
// recurring sensor and button events; writes carry checksum-terminated
// commands. Every message starts with two discriminator bytes (message
// type, event type) and is matched by exact length first. Messages that
// do not match are dropped silently because several kinds share a channel.
//
// Codecs hold per-connection state and are not safe for concurrent use.
// The transport must deliver messages to a codec one at a time.
package block

import "fmt"

// MESH block GATT UUIDs
const (
	ServiceUUID         = "72c90001-57a9-4d40-b746-534e22ec9f9e"
	IndicateCharUUID    = "72c90005-57a9-4d40-b746-534e22ec9f9e"
	NotifyCharUUID      = "72c90003-57a9-4d40-b746-534e22ec9f9e"
	WriteCharUUID       = "72c90004-57a9-4d40-b746-534e22ec9f9e"
	WriteNoRespCharUUID = "72c90002-57a9-4d40-b746-534e22ec9f9e"
)

// Discriminator positions shared by every message.
const (
	messageTypeIndex = 0
	eventTypeIndex   = 1
)

// Base message layout. Offsets are protocol-locked.
const (
	baseMessageType = 0

	indicateEventType     = 2
	indicateLength        = 16
	indicateMajorIndex    = 7
	indicateMinorIndex    = 8
	indicateReleaseIndex  = 9
	indicateBatteryIndex  = 14
	regularlyEventType    = 0
	regularlyLength       = 4
	regularlyBatteryIndex = 3
	statusButtonEventType = 1
	statusButtonLength    = 4
	statusButtonStateIdx  = 2
	statusbarLEDEventType = 0
)

// BatteryUnknown is the battery level before the first report.
const BatteryUnknown = -1

var featureCommand = [...]byte{0, 2, 1, 3}

// Version is a block firmware version.
type Version struct {
	Major, Minor, Release int
}

// VersionUnknown is the version before the first indication.
var VersionUnknown = Version{-1, -1, -1}

// MinVersion is the oldest firmware the codecs support.
var MinVersion = Version{1, 2, 5}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Release)
}

// Less reports whether v is older than w, comparing major, minor and
// release in that order.
func (v Version) Less(w Version) bool {
	if v.Major != w.Major {
		return v.Major < w.Major
	}
	if v.Minor != w.Minor {
		return v.Minor < w.Minor
	}
	return v.Release < w.Release
}

// Codec is the capability set shared by every block type.
type Codec interface {
	Kind() Kind
	// Indicate decodes a buffer received on the indicate characteristic.
	Indicate(data []byte)
	// Notify decodes a buffer received on the notify characteristic and
	// invokes any matching callback.
	Notify(data []byte)
	FeatureCommand() []byte
	StatusbarLEDCommand(power, red, green, blue bool) []byte
	CheckVersion() error
	Battery() int
	Version() Version
	OnBatteryLevel(fn func(level int))
	OnStatusButtonPressed(fn func())
}

// New returns a fresh codec for kind.
func New(kind Kind) (Codec, error) {
	switch kind {
	case KindButton:
		return NewButton(), nil
	case KindMove:
		return NewMove(), nil
	case KindLED:
		return NewLED(), nil
	default:
		return nil, fmt.Errorf("block: no codec for kind %v", kind)
	}
}

// Base decodes the messages every block shares: the indication, the
// periodic battery report and the status button. Block-type codecs embed it.
type Base struct {
	battery int
	version Version

	onBatteryLevel        func(level int)
	onStatusButtonPressed func()
}

// NewBase returns a Base with battery and version unknown.
func NewBase() *Base {
	b := &Base{}
	b.reset()
	return b
}

func (b *Base) reset() {
	b.battery = BatteryUnknown
	b.version = VersionUnknown
}

// Battery returns the last reported battery level, or BatteryUnknown.
func (b *Base) Battery() int { return b.battery }

// Version returns the decoded firmware version, or VersionUnknown.
func (b *Base) Version() Version { return b.version }

// OnBatteryLevel sets the battery report callback. A nil fn clears it.
func (b *Base) OnBatteryLevel(fn func(level int)) { b.onBatteryLevel = fn }

// OnStatusButtonPressed sets the status button callback. A nil fn clears it.
func (b *Base) OnStatusButtonPressed(fn func()) { b.onStatusButtonPressed = fn }

// FeatureCommand returns the activation command sent once after connecting.
func (b *Base) FeatureCommand() []byte {
	cmd := make([]byte, len(featureCommand))
	copy(cmd, featureCommand[:])
	return cmd
}

// Indicate stores battery level and firmware version from an indication.
func (b *Base) Indicate(data []byte) {
	if len(data) != indicateLength {
		return
	}
	if data[messageTypeIndex] != baseMessageType || data[eventTypeIndex] != indicateEventType {
		return
	}
	b.battery = int(data[indicateBatteryIndex])
	b.version = Version{
		Major:   int(data[indicateMajorIndex]),
		Minor:   int(data[indicateMinorIndex]),
		Release: int(data[indicateReleaseIndex]),
	}
}

// Notify handles the battery report and the status button.
func (b *Base) Notify(data []byte) {
	b.updateBattery(data)
	b.updateStatusButton(data)
}

func (b *Base) updateBattery(data []byte) bool {
	if len(data) != regularlyLength {
		return false
	}
	if data[messageTypeIndex] != baseMessageType || data[eventTypeIndex] != regularlyEventType {
		return false
	}
	b.battery = int(data[regularlyBatteryIndex])
	if b.onBatteryLevel == nil {
		return false
	}
	b.onBatteryLevel(b.battery)
	return true
}

func (b *Base) updateStatusButton(data []byte) bool {
	if len(data) != statusButtonLength {
		return false
	}
	if data[messageTypeIndex] != baseMessageType || data[eventTypeIndex] != statusButtonEventType {
		return false
	}
	if data[statusButtonStateIdx] != 0 {
		return false
	}
	if b.onStatusButtonPressed == nil {
		return false
	}
	b.onStatusButtonPressed()
	return true
}

// StatusbarLEDCommand builds the command that drives the status bar LED.
func (b *Base) StatusbarLEDCommand(power, red, green, blue bool) []byte {
	cmd := []byte{
		baseMessageType,
		statusbarLEDEventType,
		boolByte(red),
		boolByte(green),
		boolByte(blue),
		boolByte(power),
	}
	return appendChecksum(cmd)
}

// CheckVersion reports whether the block firmware is supported. It returns
// ErrVersionUnknown until an indication has been decoded and a
// *VersionError when the firmware is older than MinVersion.
func (b *Base) CheckVersion() error {
	if b.version == VersionUnknown {
		return ErrVersionUnknown
	}
	if b.version.Less(MinVersion) {
		return &VersionError{Version: b.version}
	}
	return nil
}
