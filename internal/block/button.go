package block

// Button message layout.
const (
	buttonMessageType = 1
	buttonEventType   = 0
	buttonLength      = 4
	buttonTypeIndex   = 3
)

// Press kinds reported by a button block.
const (
	PressSingle = 1
	PressLong   = 2
	PressDouble = 3
)

// Button is the codec for MESH-100BU blocks.
type Button struct {
	Base

	onSinglePressed func()
	onLongPressed   func()
	onDoublePressed func()
}

var _ Codec = (*Button)(nil)

// NewButton returns a Button codec with no callbacks registered.
func NewButton() *Button {
	b := &Button{}
	b.reset()
	return b
}

// Kind returns KindButton.
func (b *Button) Kind() Kind { return KindButton }

// OnSinglePressed sets the single-press callback; nil clears it.
func (b *Button) OnSinglePressed(fn func()) { b.onSinglePressed = fn }

// OnLongPressed sets the long-press callback; nil clears it.
func (b *Button) OnLongPressed(fn func()) { b.onLongPressed = fn }

// OnDoublePressed sets the double-press callback; nil clears it.
func (b *Button) OnDoublePressed(fn func()) { b.onDoublePressed = fn }

// Notify decodes the shared messages, then button press events.
func (b *Button) Notify(data []byte) {
	b.Base.Notify(data)

	if len(data) != buttonLength {
		return
	}
	if data[messageTypeIndex] != buttonMessageType || data[eventTypeIndex] != buttonEventType {
		return
	}

	var fn func()
	switch data[buttonTypeIndex] {
	case PressSingle:
		fn = b.onSinglePressed
	case PressLong:
		fn = b.onLongPressed
	case PressDouble:
		fn = b.onDoublePressed
	}
	if fn != nil {
		fn()
	}
}
