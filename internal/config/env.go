package config

// 环境变量名称常量
//
// 完整变量名为 EnvPrefix + 名称，如 BACKHAUL_LOG_FILE。
// 日志级别与格式（BACKHAUL_LOG_LEVEL/BACKHAUL_LOG_FORMAT）
// 由 internal/util/logger 直接读取，不在此列。
const (
	// EnvPrefix 环境变量前缀
	EnvPrefix = "BACKHAUL_"

	// EnvLogFile 日志文件路径
	EnvLogFile = "LOG_FILE"

	// EnvConfigFile 配置文件路径
	EnvConfigFile = "CONFIG_FILE"

	// EnvProbeInterval 探测间隔（Go duration 格式）
	EnvProbeInterval = "PROBE_INTERVAL"

	// EnvMonitorOnly 监视模式开关
	EnvMonitorOnly = "MONITOR_ONLY"

	// EnvIntrospectAddr 自省服务监听地址（非空即启用）
	EnvIntrospectAddr = "INTROSPECT_ADDR"

	// EnvRelayQosEnabled 中继整形开关
	EnvRelayQosEnabled = "RELAY_QOS_ENABLED"
)
