package constants

import "os"

func getEnvOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func GetVoicebankDir() string {
	return getEnvOr("VOICEBANK_PATH", "./assets/voice/Iona_Beta")
}

func GetVoiceRoot() string {
	return getEnvOr("VOICE_ROOT", "./assets/voice")
}

func GetLyricConversionPath() string {
	return getEnvOr("LYRIC_CONVERSION_PATH", "./assets/config/lyric_conversions.txt")
}

func GetListenAddr() string {
	return getEnvOr("LISTEN_ADDR", ":8080")
}

// One pitch step is 5ms of real time, regardless of the song's tempo.
const PitchStepMs = 5

const (
	MinTempo     = 50
	MaxTempo     = 260
	DefaultTempo = 125.0
)

const DefaultProjectName = "(no title)"

// MIDI files written by the exporter use UST's resolution.
const TicksPerBeat = 480
