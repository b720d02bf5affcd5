package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DebugWAVPath is the fixed diagnostic dump location, overwritten per clip.
const DebugWAVPath = "debug.wav"

// DumpWAV writes the clip to path as 16-bit mono PCM WAV, replacing any
// previous dump. Callers treat failures as diagnostics-only.
func DumpWAV(path string, clip Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create debug wav: %w", err)
	}
	defer f.Close()

	data := make([]int, len(clip.Samples))
	for i, s := range clip.Samples {
		switch {
		case s > 1:
			s = 1
		case s < -1:
			s = -1
		}
		data[i] = int(s * 32767)
	}

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	enc := wav.NewEncoder(f, SampleRate, 16, 1, 1)
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("write debug wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize debug wav: %w", err)
	}
	return nil
}
