package mcap

// libraryVersion is embedded in Header.Library by NewWriter when the
// caller leaves WriterOptions.OverrideLibrary empty.
const libraryVersion = "mcap-go/mcap v1.0.0"

// Version returns the string this library writes into Header.Library when
// no override is configured.
func Version() string { return libraryVersion }
