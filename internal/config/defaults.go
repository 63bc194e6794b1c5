package config

const (
	defaultDataDir           = "~/.local/share/bookdetector"
	defaultLogDir            = "~/.local/share/bookdetector/logs"
	defaultThumbnailDir      = "~/.cache/bookdetector/thumbnails"
	defaultAPIBind           = "127.0.0.1:7492"
	defaultFolderName        = "previewfiles"
	defaultCacheFileName     = "book_meta_data.csv"
	defaultHistoryFileName   = "history.db"
	defaultUnknownAuthor     = "తెలియదు"
	defaultLookupLimit       = 5
	defaultMinSimilarity     = 0.6
	defaultOCREngine         = OCREngineTesseract
	defaultTesseractBinary   = "tesseract"
	defaultOCRLanguage       = "tel"
	defaultPageSegMode       = 6
	defaultEngineMode        = 3
	defaultOCRTimeout        = 60
	defaultFFmpegBinary      = "ffmpeg"
	defaultCameraInputFormat = "v4l2"
	defaultCameraWidth       = 640
	defaultCameraHeight      = 480
	defaultCameraMaxDevices  = 5
	defaultCameraTimeout     = 15
	defaultPdftoppmBinary    = "pdftoppm"
	defaultPreviewWidth      = 300
	defaultPreviewHeight     = 400
	defaultPreviewDPI        = 144
	defaultWatchDebounceMS   = 500
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogRetentionDays  = 30
)

// OCR engine identifiers accepted by ocr.engine.
const (
	OCREngineTesseract = "tesseract"
	OCREngineGosseract = "gosseract"
)

// Default returns a Config populated with repository defaults. Folder, cache
// and history paths are derived from paths.data_dir during normalization.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:      defaultDataDir,
			LogDir:       defaultLogDir,
			ThumbnailDir: defaultThumbnailDir,
			APIBind:      defaultAPIBind,
		},
		Catalog: Catalog{
			UnknownAuthor: defaultUnknownAuthor,
		},
		Lookup: Lookup{
			Limit:         defaultLookupLimit,
			MinSimilarity: defaultMinSimilarity,
		},
		OCR: OCR{
			Engine:         defaultOCREngine,
			Binary:         defaultTesseractBinary,
			Languages:      []string{defaultOCRLanguage},
			PageSegMode:    defaultPageSegMode,
			EngineMode:     defaultEngineMode,
			Preprocess:     true,
			TimeoutSeconds: defaultOCRTimeout,
		},
		Camera: Camera{
			FFmpegBinary:   defaultFFmpegBinary,
			InputFormat:    defaultCameraInputFormat,
			Width:          defaultCameraWidth,
			Height:         defaultCameraHeight,
			MaxDevices:     defaultCameraMaxDevices,
			TimeoutSeconds: defaultCameraTimeout,
		},
		Preview: Preview{
			PdftoppmBinary: defaultPdftoppmBinary,
			Width:          defaultPreviewWidth,
			Height:         defaultPreviewHeight,
			DPI:            defaultPreviewDPI,
		},
		History: History{
			Enabled: true,
		},
		Watch: Watch{
			DebounceMS: defaultWatchDebounceMS,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
