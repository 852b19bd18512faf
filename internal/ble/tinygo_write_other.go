//go:build !darwin && !windows

package ble

// Write sends data as a write command; the BlueZ backend of tinygo
// bluetooth has no acknowledged write.
func (c *tinyGoCharacteristic) Write(data []byte) error {
	_, err := c.char.WriteWithoutResponse(data)
	return err
}
