package storage

import (
	"os"
	"syscall"
	"time"
)

func birthTime(_ string, fi os.FileInfo) time.Time {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return fi.ModTime()
	}
	return time.Unix(st.Birthtimespec.Unix())
}
