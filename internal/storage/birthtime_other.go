//go:build !linux && !darwin

package storage

import (
	"os"
	"time"
)

func birthTime(_ string, fi os.FileInfo) time.Time {
	return fi.ModTime()
}
