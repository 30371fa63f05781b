package paths

import (
	"flag"
)

// SetupMarkerFlag creates a new string flag with the passed name, defaulting
// to DefaultMarker, naming the file that marks the project root.
func SetupMarkerFlag(flagName string, flagPtr *string) {
	flag.StringVar(flagPtr, flagName, DefaultMarker, "Name of the file marking the project root")
}
