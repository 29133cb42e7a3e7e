package parameter

// Sound Settings Defaults
const (
	DefaultSoundEnabled = true
	DefaultSoundVolume  = 0.6
	DefaultSoundTheme   = "epic"
)

// Persistence
const (
	// ConfigStorageKey is the well-known key of the persisted settings record
	ConfigStorageKey = "life_track_sound_config_v2"
	// ConfigDirName is the directory created under the user config dir
	ConfigDirName = "gallop"
	// ConfigFileExt is appended to the storage key by the file backend
	ConfigFileExt = ".yaml"
)

// Environment Overrides
const (
	EnvSoundEnabled = "GALLOP_SFX_ENABLED"
	EnvSoundVolume  = "GALLOP_SFX_VOLUME" // 0-100
	EnvSoundTheme   = "GALLOP_SFX_THEME"
	EnvOutput       = "GALLOP_SFX_OUTPUT"
	EnvSampleRate   = "GALLOP_SFX_SAMPLE_RATE"
)
