package cli

// Flags holds all command-line flag values
type Flags struct {
	// Global flags
	CfgFile     string
	StudyLang   string
	TargetLang  string
	CachePath   string
	SessionsDir string
	AudioDir    string
	Profiles    string
	ListModels  bool
	Archive     bool
	KeepArchive int

	// Translation flags
	TranslationProvider string
	TranslationModel    string
	GeminiModel         string

	// Audio flags
	AudioProvider string
	AudioFallback string
	AudioFormat   string
	SkipAudio     bool
	StrictAudio   bool
	ESpeakVoice   string

	// OpenAI TTS flags
	OpenAIModel       string
	OpenAIVoice       string
	OpenAISpeed       float64
	OpenAIInstruction string

	// process flags
	BatchFile         string
	Session           string
	NewSession        bool
	RetranslateErrors bool
	MergeStrategy     string

	// mark flags
	Known   bool
	Unknown bool

	// show flags
	Filter      string
	UnknownOnly bool

	// similar flags
	PhoneticThreshold float64
	FuzzyThreshold    float64

	// export flags
	Anki            bool
	AnkiCSV         bool
	AudioZip        bool
	WithTranslation bool
	SkipKnown       bool
	DeckName        string
	ExportDir       string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		StudyLang:           "ro",
		TargetLang:          "ru",
		TranslationProvider: "openai",
		TranslationModel:    "gpt-4o-mini",
		GeminiModel:         "gemini-2.0-flash",
		AudioProvider:       "openai",
		AudioFallback:       "espeak",
		AudioFormat:         "mp3",
		OpenAIModel:         "gpt-4o-mini-tts",
		OpenAIVoice:         "alloy",
		OpenAISpeed:         0.9,
		MergeStrategy:       "preserve-progress",
		PhoneticThreshold:   0.80,
		FuzzyThreshold:      0.90,
	}
}
