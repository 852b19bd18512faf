package ble

import (
	"context"
	"fmt"
	"time"

	"github.com/chaz8081/meshblocks/internal/block"
)

// Block is a discovered MESH block.
type Block struct {
	Device
	Kind block.Kind
}

// ScanForBlocks scans for MESH blocks for the given duration. Devices whose
// advertised name is not a supported block, or does not contain serial when
// serial is non-empty, are skipped.
func ScanForBlocks(ctx context.Context, adapter Adapter, timeout time.Duration, serial string) ([]Block, error) {
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("ble: enable adapter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	devices, err := adapter.Scan(ctx, block.ServiceUUID)
	if err != nil {
		return nil, fmt.Errorf("ble: scan: %w", err)
	}

	var blocks []Block
	for _, d := range devices {
		kind, ok := block.KindOf(d.Name, serial)
		if !ok {
			continue
		}
		blocks = append(blocks, Block{Device: d, Kind: kind})
	}
	return blocks, nil
}

// FindBlock scans until a block of kind matching serial is found and
// returns the first one.
func FindBlock(ctx context.Context, adapter Adapter, timeout time.Duration, kind block.Kind, serial string) (Block, error) {
	blocks, err := ScanForBlocks(ctx, adapter, timeout, serial)
	if err != nil {
		return Block{}, err
	}
	for _, b := range blocks {
		if b.Kind == kind {
			return b, nil
		}
	}
	if serial != "" {
		return Block{}, fmt.Errorf("ble: no %s block with serial %q found", kind, serial)
	}
	return Block{}, fmt.Errorf("ble: no %s block found", kind)
}
