package ble

import "testing"

func TestTinyGoAdapterImplementsInterface(t *testing.T) {
	var _ Adapter = (*TinyGoAdapter)(nil)
}

// tinyGoCharacteristic must satisfy Characteristic on every platform,
// including those without an acknowledged GATT write.
func TestTinyGoCharacteristicImplementsInterface(t *testing.T) {
	var _ Characteristic = (*tinyGoCharacteristic)(nil)
}

func TestTinyGoConnectionImplementsInterface(t *testing.T) {
	var _ Connection = (*tinyGoConnection)(nil)
}
