package audio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/require"
)

func TestPCMToFloat32(t *testing.T) {
	pcm := []byte{
		0x00, 0x00, // 0
		0xFF, 0x7F, // 32767
		0x00, 0x80, // -32768
	}
	samples := pcmToFloat32(pcm)
	require.Len(t, samples, 3)
	require.InDelta(t, 0, samples[0], 1e-6)
	require.InDelta(t, 1, samples[1], 1e-3)
	require.InDelta(t, -1, samples[2], 1e-6)
}

func TestClipDuration(t *testing.T) {
	clip := Clip{Samples: make([]float32, SampleRate*2)}
	require.Equal(t, 2*time.Second, clip.Duration())

	require.Equal(t, time.Duration(0), Clip{}.Duration())
}

func TestDumpWAVRoundTrip(t *testing.T) {
	clip := Clip{Samples: []float32{0, 0.5, -0.5, 1, -1, 2, -2}}
	path := filepath.Join(t.TempDir(), "debug.wav")

	require.NoError(t, DumpWAV(path, clip))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, SampleRate, buf.Format.SampleRate)
	require.Equal(t, 1, buf.Format.NumChannels)
	require.Len(t, buf.Data, len(clip.Samples))

	// Out-of-range samples were clamped, not wrapped.
	require.Equal(t, 32767, buf.Data[5])
	require.Equal(t, -32767, buf.Data[6])
}

func TestDumpWAVOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.wav")
	require.NoError(t, DumpWAV(path, Clip{Samples: make([]float32, 100)}))
	require.NoError(t, DumpWAV(path, Clip{Samples: make([]float32, 10)}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Len(t, buf.Data, 10)
}
