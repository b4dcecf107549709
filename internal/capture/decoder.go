package capture

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
)

// sampleDecoder is implemented by all format-specific decoders.
type sampleDecoder interface {
	// ReadSamples fills dst with interleaved samples in [-1, 1]. When len(dst)
	// is a multiple of ChannelCount, n is too.
	ReadSamples(dst []float32) (n int, err error)
	SampleRate() int
	ChannelCount() int
}

var audioExts = []string{".mp3", ".wav", ".flac", ".ogg"}

// IsSupportedExt returns true if files with the extension can be decoded.
func IsSupportedExt(ext string) bool {
	return slices.Contains(audioExts, strings.ToLower(ext))
}

// SupportedExtsList returns a human-readable list of decodable formats.
func SupportedExtsList() string {
	return strings.Join(audioExts, ", ")
}

// newDecoder detects format by file extension and returns the appropriate decoder.
func newDecoder(f *os.File) (sampleDecoder, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch ext {
	case ".mp3":
		return newMP3Decoder(f)
	case ".wav":
		return newWAVDecoder(f)
	case ".flac":
		return newFLACDecoder(f)
	case ".ogg":
		return newOGGDecoder(f)
	default:
		return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedFormat, ext, SupportedExtsList())
	}
}

// --- PCM reader shared by MP3 and WAV ---

type pcmDecoder struct {
	r          io.Reader
	raw        []byte
	sampleRate int
	channels   int
	bitDepth   int
}

func (d *pcmDecoder) SampleRate() int   { return d.sampleRate }
func (d *pcmDecoder) ChannelCount() int { return d.channels }

func (d *pcmDecoder) ReadSamples(dst []float32) (int, error) {
	bytesPerSample := d.bitDepth / 8
	frameSize := bytesPerSample * d.channels
	want := (len(dst) / d.channels) * frameSize
	if want == 0 {
		return 0, nil
	}
	if cap(d.raw) < want {
		d.raw = make([]byte, want)
	}
	raw := d.raw[:want]

	n, err := io.ReadFull(d.r, raw)
	// Truncate to whole frames
	n -= n % frameSize
	if n == 0 {
		if err == nil || err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}

	samples := n / bytesPerSample
	for i := 0; i < samples; i++ {
		dst[i] = pcmSample(raw[i*bytesPerSample:], d.bitDepth)
	}
	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return samples, err
}

// pcmSample converts one little-endian PCM sample to [-1, 1].
func pcmSample(b []byte, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		return float32(int(b[0])-128) / 128
	case 16:
		return float32(int16(binary.LittleEndian.Uint16(b))) / 32768
	case 24:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xFFFFFF // sign extend
		}
		return float32(s) / (1 << 23)
	case 32:
		return float32(float64(int32(binary.LittleEndian.Uint32(b))) / (1 << 31))
	}
	return 0
}

// --- MP3 decoder ---

func newMP3Decoder(f *os.File) (*pcmDecoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("decoding MP3: %w", err)
	}
	// go-mp3 always produces 16-bit stereo
	return &pcmDecoder{r: dec, sampleRate: dec.SampleRate(), channels: 2, bitDepth: 16}, nil
}

// --- WAV decoder ---

func newWAVDecoder(f *os.File) (*pcmDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	// FwdToPCM positions the reader at the start of PCM data
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	bitDepth := int(dec.BitDepth)
	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit WAV", ErrUnsupportedFormat, bitDepth)
	}
	if dec.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: WAV audio format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	channels := int(dec.NumChans)
	if channels < 1 {
		return nil, fmt.Errorf("invalid WAV channel count %d", channels)
	}

	return &pcmDecoder{
		r:          io.LimitReader(f, dec.PCMLen()),
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
	}, nil
}

// --- FLAC decoder ---

type flacDecoder struct {
	stream     *flac.Stream
	buf        []float32
	sampleRate int
	channels   int
	scale      float32
}

func newFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}

	info := stream.Info
	return &flacDecoder{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		scale:      float32(math.Ldexp(1, int(info.BitsPerSample)-1)),
	}, nil
}

func (d *flacDecoder) ReadSamples(dst []float32) (int, error) {
	// Drain buffered samples first
	if len(d.buf) == 0 {
		frame, err := d.stream.ParseNext()
		if err != nil {
			return 0, err
		}

		nSamples := int(frame.Subframes[0].NSamples)
		d.buf = d.buf[:0]
		for i := 0; i < nSamples; i++ {
			for ch := 0; ch < d.channels; ch++ {
				d.buf = append(d.buf, float32(frame.Subframes[ch].Samples[i])/d.scale)
			}
		}
	}

	n := copy(dst[:len(dst)-len(dst)%d.channels], d.buf)
	d.buf = d.buf[n:]
	return n, nil
}

func (d *flacDecoder) SampleRate() int   { return d.sampleRate }
func (d *flacDecoder) ChannelCount() int { return d.channels }

// --- OGG Vorbis decoder ---

type oggDecoder struct {
	reader *oggvorbis.Reader
}

func newOGGDecoder(f *os.File) (*oggDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggDecoder{reader: reader}, nil
}

func (d *oggDecoder) ReadSamples(dst []float32) (int, error) {
	n, err := d.reader.Read(dst)
	for i := range dst[:n] {
		// Vorbis output can overshoot slightly
		dst[i] = max(-1, min(1, dst[i]))
	}
	if n > 0 && err == io.EOF {
		err = nil
	}
	return n, err
}

func (d *oggDecoder) SampleRate() int   { return d.reader.SampleRate() }
func (d *oggDecoder) ChannelCount() int { return d.reader.Channels() }
