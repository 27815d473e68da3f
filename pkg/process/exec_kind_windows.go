//go:build windows

package process

import (
	"os"
	"strings"
)

// allowedWindowsExtensions mirrors the set of kinds Windows itself treats
// as directly executable via CreateProcess.
var allowedWindowsExtensions = map[string]bool{
	".exe": true,
	".com": true,
	".bat": true,
	".cmd": true,
}

// isAllowedExecutableKind reports whether path is an executable kind this
// supervisor is willing to launch on Windows.
func isAllowedExecutableKind(path string, info os.FileInfo) bool {
	for ext := range allowedWindowsExtensions {
		if strings.HasSuffix(strings.ToLower(path), ext) {
			return true
		}
	}
	return false
}
