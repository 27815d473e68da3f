//go:build !windows

package process

import "os"

// isAllowedExecutableKind reports whether path is an executable kind this
// supervisor is willing to launch. On POSIX platforms that means the
// owner, group or other execute bit is set.
func isAllowedExecutableKind(path string, info os.FileInfo) bool {
	return info.Mode().Perm()&0111 != 0
}
