package ir

// Version constants for the IR schema and the definitions document.
const (
	// IRVersion is the IR schema version.
	IRVersion = "1"

	// DefinitionsVersion is the version of the embedded definitions document.
	DefinitionsVersion = "0.2.0"
)
