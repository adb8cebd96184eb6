package cfg

type Cfg struct {
	// Pipeline configuration
	InputPath string
	OutputDir string
	DBPath    string

	// Processing configuration
	WorkerCount int

	// Report server configuration
	Serve        bool
	Port         string
	APIAccessKey string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
