package block

// Move message layout.
const (
	moveMessageType = 1
	moveLength      = 17
	moveTypeIndex   = 1
	moveFaceIndex   = 2
	moveXLowIndex   = 4
	moveYLowIndex   = 6
	moveZLowIndex   = 8

	// accelDivisor converts raw samples to g.
	accelDivisor = 1024
)

// Motion events reported by a move block.
const (
	MotionTap         = 0
	MotionShake       = 1
	MotionFlip        = 2
	MotionOrientation = 3
)

// Accel is an accelerometer sample in g.
type Accel struct {
	X, Y, Z float64
}

// Move is the codec for MESH-100AC blocks.
type Move struct {
	Base

	accel Accel

	onTapped             func(Accel)
	onShaked             func(Accel)
	onFlipped            func(Accel)
	onOrientationChanged func(face int, a Accel)
}

var _ Codec = (*Move)(nil)

// NewMove returns a Move codec with no callbacks registered.
func NewMove() *Move {
	m := &Move{}
	m.reset()
	return m
}

// Kind returns KindMove.
func (m *Move) Kind() Kind { return KindMove }

// Accel returns the most recent accelerometer sample.
func (m *Move) Accel() Accel { return m.accel }

// OnTapped sets the tap callback; nil clears it.
func (m *Move) OnTapped(fn func(Accel)) { m.onTapped = fn }

// OnShaked sets the shake callback; nil clears it.
func (m *Move) OnShaked(fn func(Accel)) { m.onShaked = fn }

// OnFlipped sets the flip callback; nil clears it.
func (m *Move) OnFlipped(fn func(Accel)) { m.onFlipped = fn }

// OnOrientationChanged sets the callback fired when the block settles on a
// new face.
func (m *Move) OnOrientationChanged(fn func(face int, a Accel)) { m.onOrientationChanged = fn }

// Notify decodes the shared messages, then motion events. The sample is
// updated for every motion message, whatever its event type.
func (m *Move) Notify(data []byte) {
	m.Base.Notify(data)

	if len(data) != moveLength {
		return
	}
	if data[messageTypeIndex] != moveMessageType {
		return
	}

	m.accel = Accel{
		X: axis(data, moveXLowIndex),
		Y: axis(data, moveYLowIndex),
		Z: axis(data, moveZLowIndex),
	}

	switch data[moveTypeIndex] {
	case MotionTap:
		if m.onTapped != nil {
			m.onTapped(m.accel)
		}
	case MotionShake:
		if m.onShaked != nil {
			m.onShaked(m.accel)
		}
	case MotionFlip:
		if m.onFlipped != nil {
			m.onFlipped(m.accel)
		}
	case MotionOrientation:
		if m.onOrientationChanged != nil {
			m.onOrientationChanged(int(data[moveFaceIndex]), m.accel)
		}
	}
}

func axis(data []byte, low int) float64 {
	return float64(DecodeSigned16(data[low], data[low+1])) / accelDivisor
}
