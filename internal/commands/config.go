package commands

// CommonConfig contains configuration common to all commands
type CommonConfig struct {
	// DataDir is the path to the data directory
	DataDir string `help:"Path to data directory" default:"./data" env:"QIF_DATA_DIR"`
	// LogLevel is the logging level to use
	LogLevel string `help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error"`
}

// DateConfig contains the flags that control how QIF input is read
type DateConfig struct {
	// Profile names the exporter convention to start from
	Profile string `help:"Exporter profile (quicken-us, quicken-eu, banktivity)" default:"quicken-us" env:"QIF_PROFILE"`
	// DateOrder overrides the profile's date order when set
	DateOrder string `help:"Override the profile's date order (mdy, dmy)" enum:",mdy,dmy" default:""`
	// Y2K overrides the profile's two-digit year rule when set
	Y2K string `name:"y2k" help:"Override the profile's rule reading two-digit years below 69 as 20xx (on, off)" enum:",on,off" default:""`
	// Concurrency is the number of chunks parsed in parallel
	Concurrency int `help:"Number of record chunks to parse in parallel" default:"1"`
}
