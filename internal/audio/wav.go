package audio

import (
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"soundbed/pkg/errors"
)

// ReadWAV decodes a PCM WAV file into a float64 buffer.
func ReadWAV(path string) (*Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeAudioDecodeFailed, "open wav file failed", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, errors.New(errors.CodeAudioDecodeFailed, "not a valid wav file: "+path)
	}
	pcm, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrap(errors.CodeAudioDecodeFailed, "decode wav pcm failed", err)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float64(int(1) << (bitDepth - 1))

	buf := &Buffer{
		SampleRate: pcm.Format.SampleRate,
		Channels:   pcm.Format.NumChannels,
		Samples:    make([]float64, len(pcm.Data)),
	}
	for i, s := range pcm.Data {
		buf.Samples[i] = float64(s) / scale
	}
	return buf, nil
}

// WavDuration reports a WAV file's length in seconds from its header,
// without decoding samples.
func WavDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(errors.CodeAudioDecodeFailed, "open wav file failed", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return 0, errors.New(errors.CodeAudioDecodeFailed, "not a valid wav file: "+path)
	}
	d, err := decoder.Duration()
	if err != nil {
		return 0, errors.Wrap(errors.CodeAudioDecodeFailed, "read wav duration failed", err)
	}
	return d.Seconds(), nil
}

// WriteWAV encodes the buffer as 16-bit PCM. Samples outside [-1, 1] are
// clamped; the mixer's clipping guard should make that a no-op in practice.
func WriteWAV(path string, b *Buffer) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.CodeAudioDecodeFailed, "create wav file failed", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, b.SampleRate, 16, b.Channels, 1)
	intBuf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: b.Channels, SampleRate: b.SampleRate},
		Data:           make([]int, len(b.Samples)),
		SourceBitDepth: 16,
	}
	for i, s := range b.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		intBuf.Data[i] = int(s * 32767)
	}
	if err := enc.Write(intBuf); err != nil {
		return errors.Wrap(errors.CodeAudioDecodeFailed, "write wav pcm failed", err)
	}
	if err := enc.Close(); err != nil {
		return errors.Wrap(errors.CodeAudioDecodeFailed, "finalize wav file failed", err)
	}
	return nil
}
