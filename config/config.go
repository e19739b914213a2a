// Package config loads and exposes the tunables cmd/relaylistenerd wires
// into a listener.Config and its transport/discovery collaborators.
// Grounded on the teacher's app/config package: a thin wrapper over
// github.com/spf13/viper, one typed getter per setting, falling back to
// a logged default rather than erroring.
//
// The core listener package itself takes plain Go parameters and has no
// dependency on this package (spec.md §6 "No CLI, env, or persisted
// state").
package config

import (
	"log"
	"math"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Read loads the named .env/YAML file, the way the teacher's
// config.Read does at application start up.
func Read(file string) error {
	viper.SetConfigFile(file)
	return viper.ReadInConfig()
}

// Get returns a raw string config value.
func Get(key string) string {
	return viper.GetString(key)
}

// GetFloat parses a config value as a floating point number.
func GetFloat(key string) float64 {
	return viper.GetFloat64(key)
}

// GetConnectTimeoutTicks is the tick budget ConnectWithTimeout races a
// connector attempt against, for both the control channel and each
// per-peer data channel (spec.md §4.1, §4.2).
func GetConnectTimeoutTicks() int {
	n, err := strconv.Atoi(Get("ConnectTimeoutTicks"))
	if err != nil || n < 0 {
		log.Printf("[❗️] Bad ConnectTimeoutTicks, using 8\n")
		return 8
	}
	return n
}

// GetKeepaliveTicks parameterizes the keepalive wrapper installed on
// every accepted data channel (spec.md §6).
func GetKeepaliveTicks() int {
	n, err := strconv.Atoi(Get("KeepaliveTicks"))
	if err != nil || n < 0 {
		log.Printf("[❗️] Bad KeepaliveTicks, using 16\n")
		return 16
	}
	return n
}

// GetTickInterval is the wall-clock period of a single timer tick.
func GetTickInterval() time.Duration {
	ms, err := strconv.ParseUint(Get("TickIntervalMs"), 10, 64)
	if err != nil || ms == 0 {
		log.Printf("[❗️] Bad TickIntervalMs, using 1000 ms\n")
		return time.Second
	}
	return time.Duration(ms) * time.Millisecond
}

// GetRelayAddress is the multiaddr (or host:port, transport-dependent)
// of the relay server the listener's connector is pre-addressed to.
func GetRelayAddress() string {
	if v := Get("RelayAddress"); len(v) != 0 {
		return v
	}
	log.Printf("[❗️] No RelayAddress configured, using 127.0.0.1:9000\n")
	return "127.0.0.1:9000"
}

// GetNetworkingRendezvous mirrors the teacher's discovery rendezvous
// string, reused here so a relay and its listeners can find each other
// via the same DHT advertisement point.
func GetNetworkingRendezvous() string {
	if v := Get("NetworkingRendezvous"); len(v) != 0 {
		return v
	}
	log.Printf("[❗️] No NetworkingRendezvous configured, using `relaylisten`\n")
	return "relaylisten"
}

// GetNetworkingStream is the libp2p protocol ID the relay connector
// speaks on.
func GetNetworkingStream() string {
	if v := Get("NetworkingStream"); len(v) != 0 {
		return v
	}
	log.Printf("[❗️] No NetworkingStream configured, using `/relaylisten/1.0.0`\n")
	return "/relaylisten/1.0.0"
}

// GetBootstrapPeer returns the bootstrap multiaddr used to join the
// DHT, ported unchanged from the teacher's networking.BootstrapPeers.
func GetBootstrapPeer() string {
	return Get("BootstrapPeer")
}

// GetRedisAddress is the accesssource Redis endpoint.
func GetRedisAddress() string {
	if v := Get("RedisAddress"); len(v) != 0 {
		return v
	}
	log.Printf("[❗️] No RedisAddress configured, using 127.0.0.1:6379\n")
	return "127.0.0.1:6379"
}

// GetRedisPassword is the accesssource Redis password, empty if unset.
func GetRedisPassword() string {
	return Get("RedisPassword")
}

// GetRedisDBIndex mirrors the teacher's config.GetRedisDBIndex.
func GetRedisDBIndex() int {
	db, err := strconv.ParseUint(Get("RedisDB"), 10, 8)
	if err != nil {
		log.Printf("[❗️] Failed to parse redis database index : `%s`, using 1\n", err.Error())
		return 1
	}
	return int(db)
}

// GetAccessOpTopic is the Redis pub/sub channel access-control mutations
// arrive on.
func GetAccessOpTopic() string {
	if v := Get("AccessOpTopic"); len(v) != 0 {
		return v
	}
	log.Printf("[❗️] No AccessOpTopic configured, using `relaylisten_access_ops`\n")
	return "relaylisten_access_ops"
}

// GetConcurrencyFactor sizes a worker pool relative to CPU count, ported
// unchanged from the teacher's config.GetConcurrencyFactor.
//
// @note You can set floating point value for `ConcurrencyFactor` ( > 0 )
func GetConcurrencyFactor() int {
	f := int(math.Ceil(GetFloat("ConcurrencyFactor") * float64(runtime.NumCPU())))
	if f <= 0 {
		log.Printf("[❗️] Bad concurrency factor, using unit sized pool\n")
		return 1
	}
	return f
}

// GetStatusServerPort is the address the cmd/relaylistenerd status
// endpoint listens on.
func GetStatusServerPort() string {
	if v := Get("StatusServerPort"); len(v) != 0 {
		return v
	}
	log.Printf("[❗️] No StatusServerPort configured, using :7777\n")
	return ":7777"
}
