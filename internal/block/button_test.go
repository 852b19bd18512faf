package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type pressRecorder struct {
	single, long, double int
}

func newRecordedButton() (*Button, *pressRecorder) {
	b := NewButton()
	r := &pressRecorder{}
	b.OnSinglePressed(func() { r.single++ })
	b.OnLongPressed(func() { r.long++ })
	b.OnDoublePressed(func() { r.double++ })
	return b, r
}

func TestButtonPresses(t *testing.T) {
	tests := []struct {
		data []byte
		want pressRecorder
	}{
		{[]byte{1, 0, 0, 1}, pressRecorder{single: 1}},
		{[]byte{1, 0, 0, 2}, pressRecorder{long: 1}},
		{[]byte{1, 0, 0, 3}, pressRecorder{double: 1}},
		{[]byte{1, 0, 0, 4}, pressRecorder{}},
		{[]byte{1, 0, 0, 0}, pressRecorder{}},
		{[]byte{1, 1, 0, 1}, pressRecorder{}},
		{[]byte{1, 0, 0, 1, 0}, pressRecorder{}},
		{[]byte{1, 0, 0}, pressRecorder{}},
	}
	for _, tt := range tests {
		b, r := newRecordedButton()
		b.Notify(tt.data)
		assert.Equal(t, tt.want, *r, "Notify(%v)", tt.data)
	}
}

func TestButtonWithoutCallbacks(t *testing.T) {
	b := NewButton()
	assert.NotPanics(t, func() {
		b.Notify([]byte{1, 0, 0, 1})
		b.Notify([]byte{1, 0, 0, 2})
		b.Notify([]byte{1, 0, 0, 3})
	})
}

func TestButtonInheritsBaseDecoding(t *testing.T) {
	b, r := newRecordedButton()
	level := -1
	status := 0
	b.OnBatteryLevel(func(l int) { level = l })
	b.OnStatusButtonPressed(func() { status++ })

	b.Notify([]byte{0, 0, 0, 60})
	b.Notify([]byte{0, 1, 0, 0})
	b.Indicate(indication(1, 2, 5, 61))

	assert.Equal(t, 60, level)
	assert.Equal(t, 1, status)
	assert.Equal(t, 61, b.Battery())
	assert.NoError(t, b.CheckVersion())
	assert.Equal(t, pressRecorder{}, *r)
}
