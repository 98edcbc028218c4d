package slurm

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	errInvalidMemFormat  = errors.New("invalid memory format")
	errInvalidTimeFormat = errors.New("invalid time format")
)

// ParseMem parses a memory request like 8G or 500M into MB.
func ParseMem(memStr string) (int64, error) {
	memStr = strings.ToUpper(strings.TrimSpace(memStr))
	var value int64
	var unit string
	n, err := fmt.Sscanf(memStr, "%d%s", &value, &unit)
	if err != nil && n == 0 {
		return 0, errors.Wrap(errInvalidMemFormat, memStr)
	}
	switch unit {
	case "G", "GB":
		return value * 1024, nil
	case "M", "MB", "":
		return value, nil
	case "K", "KB":
		return value / 1024, nil
	case "T", "TB":
		return value * 1024 * 1024, nil
	default:
		return 0, errors.Wrap(errInvalidMemFormat, memStr)
	}
}

// ParseTime parses a SLURM time spec: [days-]HH:MM:SS, HH:MM or MM.
func ParseTime(timeStr string) (time.Duration, error) {
	timeStr = strings.TrimSpace(timeStr)
	if timeStr == "" {
		return 0, nil
	}
	var days int64
	hms := timeStr
	if idx := strings.Index(hms, "-"); idx >= 0 {
		parsed, err := strconv.ParseInt(hms[:idx], 10, 64)
		if err != nil {
			return 0, errors.Wrap(errInvalidTimeFormat, timeStr)
		}
		days = parsed
		hms = strings.TrimSpace(hms[idx+1:])
	}
	var hours, minutes, seconds int64
	parts := strings.Split(hms, ":")
	fields := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, errors.Wrap(errInvalidTimeFormat, timeStr)
		}
		fields[i] = v
	}
	switch len(fields) {
	case 3:
		hours, minutes, seconds = fields[0], fields[1], fields[2]
	case 2:
		hours, minutes = fields[0], fields[1]
	case 1:
		minutes = fields[0]
	default:
		return 0, errors.Wrap(errInvalidTimeFormat, timeStr)
	}
	d := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second
	return d, nil
}

// FormatTime renders a duration as a SLURM time spec.
func FormatTime(d time.Duration) string {
	days := int64(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int64(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int64(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	seconds := int64(d / time.Second)
	if days > 0 {
		return fmt.Sprintf("%d-%02d:%02d:%02d", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
