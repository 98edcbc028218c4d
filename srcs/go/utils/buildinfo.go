package utils

import (
	"strconv"
	"time"
)

var (
	// -ldflags "-X github.com/shardrun/shardrun/srcs/go/utils.buildtimeString=$bt
	buildtimeString string

	buildtime int64
)

func init() {
	buildtime, _ = strconv.ParseInt(buildtimeString, 10, 64)
}

// Buildtime reports when the binary was built, if the build stamped it.
func Buildtime() (time.Time, bool) {
	if buildtime == 0 {
		return time.Time{}, false
	}
	return time.Unix(buildtime, 0), true
}
