package backend

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoAdapter is returned when a backend exposes no GPU adapter.
	ErrNoAdapter = errors.New("backend: no GPU adapter found")
)

// Device is an opened HAL device together with the instance and adapter
// that own it.
type Device struct {
	Device   hal.Device
	Queue    hal.Queue
	Info     gputypes.AdapterInfo
	Features gputypes.Features
	Backend  string

	instance hal.Instance
	adapter  hal.Adapter
	once     sync.Once
}

// OpenDevice creates an instance of the named backend, picks an adapter and
// opens a device with default limits. An empty name selects Default.
//
// Discrete and integrated GPUs are preferred over other adapters.
func OpenDevice(name string) (*Device, error) {
	var b hal.Backend
	if name == "" {
		name = DefaultName()
		b = Default()
	} else {
		name = canonical(name)
		b = Get(name)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}

	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("backend: create %s instance: %w", name, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: backend %s", ErrNoAdapter, name)
	}
	selected := pickAdapter(adapters)

	open, err := selected.Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("backend: open %s device: %w", name, err)
	}

	slogger().Info("backend: device opened",
		"backend", name,
		"adapter", selected.Info.Name,
		"type", selected.Info.DeviceType)

	return &Device{
		Device:   open.Device,
		Queue:    open.Queue,
		Info:     selected.Info,
		Features: selected.Features,
		Backend:  name,
		instance: instance,
		adapter:  selected.Adapter,
	}, nil
}

func pickAdapter(adapters []hal.ExposedAdapter) *hal.ExposedAdapter {
	for i := range adapters {
		switch adapters[i].Info.DeviceType {
		case gputypes.DeviceTypeDiscreteGPU, gputypes.DeviceTypeIntegratedGPU:
			return &adapters[i]
		}
	}
	return &adapters[0]
}

// Close destroys the device, adapter and instance. It is safe to call more
// than once.
func (d *Device) Close() {
	d.once.Do(func() {
		if d.Device != nil {
			d.Device.Destroy()
		}
		if d.adapter != nil {
			d.adapter.Destroy()
		}
		if d.instance != nil {
			d.instance.Destroy()
		}
		slogger().Info("backend: device closed", "backend", d.Backend)
	})
}
