package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	return Config{
		InSim: InSimConfig{
			Host:  "127.0.0.1",
			Port:  29999,
			IName: "racetalk",
		},
		Model: ModelConfig{
			Mode:     "whisper",
			Path:     "models/ggml-base.en.bin",
			Language: "en",
		},
		Timeouts: TimeoutConfig{
			RecordingSecs: 10,
			PreviewSecs:   20,
		},
		UI: UIConfig{
			Scale:          4,
			Left:           4,
			Top:            185,
			ButtonIDOffset: 100,
		},
		Binds: BindConfig{
			Talk:        "stt talk",
			Accept:      "stt accept",
			NextChannel: "stt nc",
			PrevChannel: "stt pc",
		},
		Channels: []Channel{
			{Label: "^7say", Prefix: ""},
		},
		LogLevel: "info",
	}
}
