package block

import (
	"errors"
	"fmt"
)

// ErrVersionUnknown is returned by CheckVersion before the block has sent
// its indication.
var ErrVersionUnknown = errors.New("block: firmware version not received yet")

// VersionError reports a block whose firmware is older than MinVersion.
type VersionError struct {
	Version Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("block: version %s is not supported (minimum %s)", e.Version, MinVersion)
}

// OutOfRangeError reports a command parameter outside its valid bounds.
type OutOfRangeError struct {
	Name     string
	Min, Max int
	Value    int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("block: %s out of range [%d, %d]: %d", e.Name, e.Min, e.Max, e.Value)
}
