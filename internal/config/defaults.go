package config

const (
	defaultConfigPath    = "~/.config/cbzsanitize/config.toml"
	defaultMaxDimension  = 2000
	defaultQuality       = 85
	defaultSizeThreshold = "3 MB"
	defaultMaxPixels     = 400_000_000
	defaultPadWidth      = 3
	defaultMaxEntrySize  = "512 MB"
	defaultCompression   = "deflate"
	defaultBackupSuffix  = "-orig"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Transcode: Transcode{
			MaxDimension:  defaultMaxDimension,
			Quality:       defaultQuality,
			SizeThreshold: defaultSizeThreshold,
			MaxPixels:     defaultMaxPixels,
		},
		Naming: Naming{
			PadWidth: defaultPadWidth,
		},
		Archive: Archive{
			DropPatterns: defaultDropPatterns(),
			MaxEntrySize: defaultMaxEntrySize,
			Compression:  defaultCompression,
		},
		Output: Output{
			BackupSuffix: defaultBackupSuffix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultDropPatterns() []string {
	return []string{
		"__MACOSX/*",
		"*/__MACOSX/*",
		"._*",
		"*/._*",
		".DS_Store",
		"*/.DS_Store",
		"Thumbs.db",
		"*/Thumbs.db",
		"desktop.ini",
	}
}
