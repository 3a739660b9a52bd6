package version

// Version is the release version of debtguard. Release builds override it
// with -ldflags "-X github.com/thomas-vilte/debtguard/internal/version.Version=...".
var Version = "0.1.0"

// FullVersion returns the version with the v prefix.
func FullVersion() string {
	return "v" + Version
}
