package capture

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/sirupsen/logrus"
)

const (
	maxDeviceChannels = 2
	framesPerBuffer   = 512
)

// DeviceSource captures from a PortAudio input device. On most systems a
// loopback or monitor device gives the audio currently playing.
type DeviceSource struct {
	info     *portaudio.DeviceInfo
	channels int

	mu     sync.Mutex
	stream *portaudio.Stream
	closed bool
}

// OpenDevice initializes PortAudio and picks the default input device, or the
// first input device whose name contains name (case-insensitive).
func OpenDevice(name string) (*DeviceSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing portaudio: %w", err)
	}

	info, err := findInputDevice(name)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	channels := min(info.MaxInputChannels, maxDeviceChannels)
	logrus.WithFields(logrus.Fields{
		"function":    "OpenDevice",
		"device":      info.Name,
		"sample_rate": info.DefaultSampleRate,
		"channels":    channels,
	}).Info("Selected audio input device")

	return &DeviceSource{info: info, channels: channels}, nil
}

func findInputDevice(name string) (*portaudio.DeviceInfo, error) {
	if name == "" {
		info, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoInputDevice, err)
		}
		return info, nil
	}

	devices, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing audio devices: %w", err)
	}
	want := strings.ToLower(name)
	for _, d := range devices {
		if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), want) {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w matching %q", ErrNoInputDevice, name)
}

func (d *DeviceSource) SampleRate() float64 { return d.info.DefaultSampleRate }
func (d *DeviceSource) ChannelCount() int   { return d.channels }
func (d *DeviceSource) Describe() string    { return "device: " + d.info.Name }

// Start opens and starts the input stream. sink runs on the PortAudio
// callback thread.
func (d *DeviceSource) Start(sink func([]float32)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return fmt.Errorf("device source closed")
	}
	if d.stream != nil {
		return fmt.Errorf("device source already started")
	}

	params := portaudio.LowLatencyParameters(d.info, nil)
	params.Input.Channels = d.channels
	params.FramesPerBuffer = framesPerBuffer

	stream, err := portaudio.OpenStream(params, func(in []float32) {
		sink(in)
	})
	if err != nil {
		return fmt.Errorf("opening input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("starting input stream: %w", err)
	}
	d.stream = stream
	return nil
}

// Close stops the stream, waiting for any running callback, and releases
// PortAudio.
func (d *DeviceSource) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var firstErr error
	if d.stream != nil {
		if err := d.stream.Stop(); err != nil {
			firstErr = fmt.Errorf("stopping input stream: %w", err)
		}
		if err := d.stream.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing input stream: %w", err)
		}
	}
	if err := portaudio.Terminate(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("terminating portaudio: %w", err)
	}
	return firstErr
}
