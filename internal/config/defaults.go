package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// envKeyReplacer maps nested keys to environment names: server.addr is read
// from CMGR_SERVER_ADDR.
var envKeyReplacer = strings.NewReplacer(".", "_")

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", "http://localhost:3000")
	v.SetDefault("page_size", 20)
	v.SetDefault("request_timeout", 10*time.Second)
	v.SetDefault("cache_ttl", 2*time.Second)
	v.SetDefault("realtime", true)
	v.SetDefault("realtime_debounce", 300*time.Millisecond)
	v.SetDefault("confirm_destructive", true)
	v.SetDefault("log_file", "")
	v.SetDefault("log_level", "info")

	dir := Directory()
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("server.db_path", filepath.Join(dir, "content.db"))
	v.SetDefault("server.types_dir", filepath.Join(dir, "types"))
	v.SetDefault("server.watch", true)
}
