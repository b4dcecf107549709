package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"
)

const (
	// paceFrames is the chunk size delivered per tick when playback is muted.
	paceFrames      = 1024
	monitorInterval = 200 * time.Millisecond
)

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
	otoRate      int
	otoChannels  int
)

// initOto creates the process-wide oto context. oto allows only one, so a
// later call with a different format fails.
func initOto(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
			otoRate, otoChannels = sampleRate, channels
		}
	})
	if otoInitErr != nil {
		return nil, fmt.Errorf("initializing audio output: %w", otoInitErr)
	}
	if sampleRate != otoRate || channels != otoChannels {
		return nil, fmt.Errorf("audio output already open at %d Hz, %d channels", otoRate, otoChannels)
	}
	return globalOtoCtx, nil
}

// FileSource decodes an audio file and feeds it to the sink at real time.
// Unless muted it is also played through the default output, and the sink sees
// exactly the buffers the output pulls.
type FileSource struct {
	path string
	file *os.File
	dec  sampleDecoder
	meta Metadata
	mute bool

	mu      sync.Mutex
	sink    func([]float32)
	buf     []float32
	started bool
	closed  bool

	eof    atomic.Bool
	player *oto.Player
	stop   chan struct{}
	wg     sync.WaitGroup

	done     chan struct{}
	doneOnce sync.Once
}

// OpenFile opens and probes path. mute disables audible playback.
func OpenFile(path string, mute bool) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	if dec.SampleRate() <= 0 || dec.ChannelCount() < 1 {
		f.Close()
		return nil, fmt.Errorf("invalid stream parameters: %d Hz, %d channels", dec.SampleRate(), dec.ChannelCount())
	}

	s := &FileSource{
		path: path,
		file: f,
		dec:  dec,
		meta: ReadMetadata(path),
		mute: mute,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	logrus.WithFields(logrus.Fields{
		"function":    "OpenFile",
		"path":        path,
		"sample_rate": dec.SampleRate(),
		"channels":    dec.ChannelCount(),
		"mute":        mute,
	}).Info("Opened audio file")
	return s, nil
}

func (s *FileSource) SampleRate() float64 { return float64(s.dec.SampleRate()) }
func (s *FileSource) ChannelCount() int   { return s.dec.ChannelCount() }
func (s *FileSource) Metadata() Metadata  { return s.meta }
func (s *FileSource) Describe() string    { return "file: " + s.meta.String() }

// Done returns a channel that closes when the stream has been fully delivered
// (and played, unless muted) or the source is closed.
func (s *FileSource) Done() <-chan struct{} { return s.done }

// Start begins decoding. The sink runs on oto's reader goroutine, or on a
// pacing goroutine when muted.
func (s *FileSource) Start(sink func([]float32)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("file source closed")
	}
	if s.started {
		return fmt.Errorf("file source already started")
	}

	if !s.mute {
		ctx, err := initOto(s.dec.SampleRate(), s.dec.ChannelCount())
		if err != nil {
			return err
		}
		s.player = ctx.NewPlayer(tapReader{s})
	}

	s.sink = sink
	s.started = true
	s.wg.Add(1)
	if s.player != nil {
		s.player.Play()
		go s.monitor()
	} else {
		go s.pace()
	}
	return nil
}

// fill reads until dst is full or the decoder fails, passing what was read to
// the sink. Callers hold s.mu.
func (s *FileSource) fill(dst []float32) (int, error) {
	total := 0
	var err error
	for total < len(dst) {
		var n int
		n, err = s.dec.ReadSamples(dst[total:])
		total += n
		if err != nil || n == 0 {
			break
		}
	}
	if total > 0 {
		s.sink(dst[:total])
	}
	return total, err
}

func (s *FileSource) chunk(samples int) []float32 {
	if cap(s.buf) < samples {
		s.buf = make([]float32, samples)
	}
	return s.buf[:samples]
}

// tapReader is the io.Reader oto pulls float32 LE frames from.
type tapReader struct{ s *FileSource }

func (t tapReader) Read(p []byte) (int, error) {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.eof.Load() {
		return 0, io.EOF
	}

	channels := s.dec.ChannelCount()
	frames := len(p) / (4 * channels)
	if frames == 0 {
		return 0, nil
	}

	buf := s.chunk(frames * channels)
	n, err := s.fill(buf)
	for i, v := range buf[:n] {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(v))
	}
	if err != nil {
		s.endOfStream(err)
		err = io.EOF
	}
	return n * 4, err
}

// monitor closes done once the decoder is drained and oto has played out
// its buffer.
func (s *FileSource) monitor() {
	defer s.wg.Done()
	ticker := time.NewTicker(monitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}
		if s.eof.Load() && !s.player.IsPlaying() {
			s.finish()
			return
		}
	}
}

// pace delivers paceFrames per tick at the stream's sample rate.
func (s *FileSource) pace() {
	defer s.wg.Done()
	interval := time.Duration(float64(paceFrames) / float64(s.dec.SampleRate()) * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		_, err := s.fill(s.chunk(paceFrames * s.dec.ChannelCount()))
		if err != nil {
			s.endOfStream(err)
		}
		s.mu.Unlock()

		if err != nil {
			s.finish()
			return
		}
	}
}

func (s *FileSource) endOfStream(err error) {
	s.eof.Store(true)
	if !errors.Is(err, io.EOF) {
		logrus.WithFields(logrus.Fields{
			"function": "FileSource.endOfStream",
			"path":     s.path,
			"error":    err.Error(),
		}).Warn("Decoding stopped early")
		return
	}
	logrus.WithFields(logrus.Fields{
		"function": "FileSource.endOfStream",
		"path":     s.path,
	}).Debug("Reached end of stream")
}

func (s *FileSource) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

// Close stops playback and releases the file. The sink is not called after
// Close returns.
func (s *FileSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	var firstErr error
	if s.player != nil {
		s.player.Pause()
		if err := s.player.Close(); err != nil {
			firstErr = fmt.Errorf("closing player: %w", err)
		}
	}
	s.wg.Wait()
	s.finish()

	if err := s.file.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("closing %s: %w", s.path, err)
	}
	return firstErr
}
