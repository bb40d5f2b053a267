package storage

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// birthTime asks statx for the creation time; filesystems without it fall back to mtime.
func birthTime(path string, fi os.FileInfo) time.Time {
	var st unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &st); err != nil {
		return fi.ModTime()
	}
	if st.Mask&unix.STATX_BTIME == 0 {
		return fi.ModTime()
	}
	return time.Unix(st.Btime.Sec, int64(st.Btime.Nsec))
}
