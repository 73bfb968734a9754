package global

var (
	// Version and BuildTime are set at link time.
	Version   = "0.0.1"
	BuildTime = "none"

	// Debug enables debug-level console output, including every
	// command line passed to podman and buildah.
	Debug = false

	// ConfigDirName is the directory under the user config home that
	// holds the tool config and per-build records.
	ConfigDirName = "cab"
)
