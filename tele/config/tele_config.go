// Separate package is workaround to import cycles.
package tele_config

type Config struct { //nolint:maligned
	Enabled         bool   `hcl:"enable"`
	Broker          string `hcl:"broker"`
	ClientId        string `hcl:"client_id"`
	Password        string `hcl:"password"` // secret
	KeepaliveSec    int    `hcl:"keepalive_sec"`
	StatIntervalSec int    `hcl:"stat_interval_sec"`
	LogDebug        bool   `hcl:"log_debug"`
	MqttLogDebug    bool   `hcl:"mqtt_log_debug"`

	BuildVersion string `hcl:"-"`
}
