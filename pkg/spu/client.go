package spu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/spukit/internal/logger"
	"github.com/joshuapare/spukit/spu/bus"
	"github.com/joshuapare/spukit/spu/burst"
	"github.com/joshuapare/spukit/spu/registry"
	"github.com/joshuapare/spukit/spu/sim"
	"github.com/joshuapare/spukit/spu/structure"
)

// Client owns one backend and the registry behind it.
type Client struct {
	mode    Mode
	backend structure.Backend
	reg     *registry.Registry
	tables  *sim.Tables
	mmio    *bus.MMIO
	log     *slog.Logger
}

// Open builds a client from opts.
func Open(opts Options) (*Client, error) {
	mode := opts.Mode
	if mode == ModeAuto {
		mode = ModeSim
		if opts.DevicePath != "" {
			mode = ModeHardware
		}
	}

	var b bus.Bus
	var mmio *bus.MMIO
	if mode == ModeHardware || mode == ModeHybrid {
		if opts.DevicePath == "" {
			return nil, fmt.Errorf("spu: %s mode needs a device path", mode)
		}
		m, err := bus.Open(opts.DevicePath, opts.DeviceOffset)
		if err != nil {
			return nil, fmt.Errorf("spu: open device: %w", err)
		}
		b, mmio = m, m
	}

	c, err := OpenBus(b, mode, opts)
	if err != nil {
		if mmio != nil {
			_ = mmio.Close()
		}
		return nil, err
	}
	c.mmio = mmio
	return c, nil
}

// OpenBus builds a client over an existing bus. b may be nil in ModeSim.
// ModeAuto picks ModeHardware when b is non-nil.
func OpenBus(b bus.Bus, mode Mode, opts Options) (*Client, error) {
	if mode == ModeAuto {
		mode = ModeSim
		if b != nil {
			mode = ModeHardware
		}
	}
	log := logger.Or(opts.Logger)
	if opts.Registry.Logger == nil {
		opts.Registry.Logger = log
	}
	if opts.Engine.Logger == nil {
		opts.Engine.Logger = log
	}
	if opts.Sim.Logger == nil {
		opts.Sim.Logger = log
	}

	reg := registry.New(opts.Registry)
	c := &Client{mode: mode, reg: reg, log: log}

	newHardware := func() (*structure.Hardware, error) {
		if b == nil {
			return nil, fmt.Errorf("spu: %s mode needs a bus", mode)
		}
		if opts.Trace {
			b = bus.NewTrace(b, log)
		}
		return structure.NewHardware(burst.New(b, reg, opts.Engine)), nil
	}

	switch mode {
	case ModeHardware:
		hw, err := newHardware()
		if err != nil {
			return nil, err
		}
		c.backend = hw
	case ModeSim:
		c.tables = sim.NewTables(reg)
		c.backend = sim.New(c.tables, opts.Sim)
	case ModeHybrid:
		hw, err := newHardware()
		if err != nil {
			return nil, err
		}
		simOpts := opts.Sim
		simOpts.Neighbors = false
		simOpts.Fallback = hw
		c.tables = sim.NewTables(reg)
		c.backend = sim.New(c.tables, simOpts)
	default:
		return nil, fmt.Errorf("spu: unknown mode %d", mode)
	}

	log.Debug("client opened", "mode", c.mode.String(), "domain", reg.Domain().String())
	return c, nil
}

// Mode returns the resolved backend mode.
func (c *Client) Mode() Mode { return c.mode }

// Backend returns the backend structures run on.
func (c *Client) Backend() structure.Backend { return c.backend }

// Registry returns the client's identifier registry.
func (c *Client) Registry() *registry.Registry { return c.reg }

// Tables returns the simulation store, or nil in ModeHardware.
func (c *Client) Tables() *sim.Tables { return c.tables }

// New creates a fresh structure.
func (c *Client) New(ctx context.Context) (*structure.Structure, error) {
	return structure.New(ctx, c.backend, structure.Options{Logger: c.log})
}

// Close tears down the registry and unmaps the device window. Structures
// still live are reported by the registry and become unusable.
func (c *Client) Close() error {
	var errs []error
	if c.tables != nil {
		errs = append(errs, c.tables.Close())
	} else {
		errs = append(errs, c.reg.Close())
	}
	if c.mmio != nil {
		errs = append(errs, c.mmio.Close())
		c.mmio = nil
	}
	return errors.Join(errs...)
}
