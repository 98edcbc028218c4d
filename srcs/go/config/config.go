package config

import (
	"os"
	"strings"
	"time"

	"github.com/shardrun/shardrun/srcs/go/utils"
)

const DefaultMasterPort = 12802

const (
	LogLevelEnvKey         = `SHARDRUN_CONFIG_LOG_LEVEL`
	MonitoringPeriodEnvKey = `SHARDRUN_CONFIG_MONITORING_PERIOD`
	ConfigServerEnvKey     = `SHARDRUN_CONFIG_SERVER`
)

var ConfigEnvKeys = []string{
	LogLevelEnvKey,
	MonitoringPeriodEnvKey,
	ConfigServerEnvKey,
}

var (
	LogLevel         = `INFO`
	MonitoringPeriod = 2 * time.Second
	ConfigServer     = ``
)

func init() {
	if val := os.Getenv(LogLevelEnvKey); len(val) > 0 {
		LogLevel = strings.ToUpper(val)
	}
	if val := os.Getenv(MonitoringPeriodEnvKey); len(val) > 0 {
		MonitoringPeriod = parseDuration(val)
	}
	if val := os.Getenv(ConfigServerEnvKey); len(val) > 0 {
		ConfigServer = val
	}
}

func parseDuration(val string) time.Duration {
	d, err := time.ParseDuration(val)
	if err != nil {
		utils.ExitErr(err)
	}
	return d
}
