//go:build unix

package checks

import (
	"os"
	"os/user"
	"strconv"
	"syscall"
)

// fileOwner returns the owning user name of path, the numeric uid when the
// name cannot be resolved, or nil when path cannot be stat'ed.
func fileOwner(path string) any {
	info, err := os.Stat(path)
	if err != nil {
		return nil
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	uid := strconv.FormatUint(uint64(st.Uid), 10)
	if u, err := user.LookupId(uid); err == nil && u.Username != "" {
		return u.Username
	}
	return uid
}
