// Package misc keeps build-time program identity.
package misc

// Set by linker: -ldflags "-X twdefaults/misc.version=... -X twdefaults/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "twd"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
