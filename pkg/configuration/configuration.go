package configuration

import (
	"net/url"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/vaultview/vaultview/internal/constants"
)

type DefaultValueFunction func(existingValue interface{}) interface{}

// Configuration is an interface for managing configuration values.
type Configuration interface {
	Clone() Configuration

	Set(key string, value interface{})
	Get(key string) interface{}
	IsSet(key string) bool
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetFloat64(key string) float64
	GetUrl(key string) *url.URL

	AddFlagSet(flagset *pflag.FlagSet) error
	AllKeys() []string
	AddDefaultValue(key string, defaultValue DefaultValueFunction)
}

// extendedViper is a wrapper around the viper library.
// It adds support for lazily computed default values.
type extendedViper struct {
	viper         *viper.Viper
	defaultValues map[string]DefaultValueFunction
	flagsets      []*pflag.FlagSet
	mutex         sync.Mutex
}

// StandardDefaultValueFunction is a default value function that returns the default value if the existing value is nil.
func StandardDefaultValueFunction(defaultValue interface{}) DefaultValueFunction {
	return func(existingValue interface{}) interface{} {
		if existingValue != nil {
			return existingValue
		}
		return defaultValue
	}
}

// NewInMemory creates a new Configuration instance that is not persisted to disk.
func NewInMemory() Configuration {
	config := &extendedViper{
		viper:         viper.New(),
		defaultValues: make(map[string]DefaultValueFunction),
	}
	config.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.viper.AutomaticEnv()
	return config
}

// New creates the default application configuration.
func New() Configuration {
	config := NewInMemory()
	addDefaults(config)
	return config
}

func addDefaults(config Configuration) {
	config.AddDefaultValue(API_URL, StandardDefaultValueFunction(constants.VAULTVIEW_DEFAULT_API_URL))
	config.AddDefaultValue(LISTEN_ADDR, StandardDefaultValueFunction(constants.VAULTVIEW_DEFAULT_LISTEN_ADDR))
	config.AddDefaultValue(CREDENTIALS_FILE, StandardDefaultValueFunction(constants.VAULTVIEW_CREDENTIALS_FILE))
	config.AddDefaultValue(LOG_LEVEL, StandardDefaultValueFunction("info"))
	config.AddDefaultValue(MEMBERS_PAGE_SIZE, StandardDefaultValueFunction(constants.VAULTVIEW_DEFAULT_MEMBERS_PAGE_SIZE))
	config.AddDefaultValue(TIMEOUT, StandardDefaultValueFunction(30))
	config.AddDefaultValue(MAX_TENANT_FETCHES, StandardDefaultValueFunction(0))
	config.AddDefaultValue(RETRY_ATTEMPTS, StandardDefaultValueFunction(1))
	config.AddDefaultValue(RETRY_AFTER_SECONDS, StandardDefaultValueFunction(5))
	config.AddDefaultValue(DEVICE_CACHE_TTL_SECS, StandardDefaultValueFunction(300))
}

// Clone creates a copy of the current configuration.
func (ev *extendedViper) Clone() Configuration {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()

	clone := NewInMemory()
	keys := ev.viper.AllKeys()
	for i := range keys {
		if isSet := ev.viper.IsSet(keys[i]); isSet {
			clone.Set(keys[i], ev.viper.Get(keys[i]))
		}
	}
	for k, v := range ev.defaultValues {
		clone.AddDefaultValue(k, v)
	}
	return clone
}

// Set sets a configuration value.
func (ev *extendedViper) Set(key string, value interface{}) {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	ev.viper.Set(key, value)
}

func (ev *extendedViper) get(key string) interface{} {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	return ev.viper.Get(key)
}

// IsSet returns true if a value for the given key was explicitly set.
func (ev *extendedViper) IsSet(key string) bool {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	return ev.viper.IsSet(key)
}

// Get returns a configuration value.
func (ev *extendedViper) Get(key string) interface{} {
	value := ev.get(key)
	if ev.defaultValues[key] != nil {
		value = ev.defaultValues[key](value)
	}
	return value
}

// GetString returns a configuration value as string.
func (ev *extendedViper) GetString(key string) string {
	result := ev.Get(key)
	if result == nil {
		return ""
	}
	if s, ok := result.(string); ok {
		return s
	}
	return ""
}

// GetBool returns a configuration value as bool.
func (ev *extendedViper) GetBool(key string) bool {
	result := ev.Get(key)
	if b, ok := result.(bool); ok {
		return b
	}
	return false
}

// GetInt returns a configuration value as int.
func (ev *extendedViper) GetInt(key string) int {
	switch v := ev.Get(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// GetFloat64 returns a configuration value as float64.
func (ev *extendedViper) GetFloat64(key string) float64 {
	switch v := ev.Get(key).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// GetUrl returns a configuration value as parsed URL, nil when unparsable.
func (ev *extendedViper) GetUrl(key string) *url.URL {
	u, err := url.Parse(ev.GetString(key))
	if err != nil {
		return nil
	}
	return u
}

// AddFlagSet binds a pflag set so flag values resolve through the configuration.
func (ev *extendedViper) AddFlagSet(flagset *pflag.FlagSet) error {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	ev.flagsets = append(ev.flagsets, flagset)
	return ev.viper.BindPFlags(flagset)
}

// AllKeys returns all keys with a configured value.
func (ev *extendedViper) AllKeys() []string {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	return ev.viper.AllKeys()
}

// AddDefaultValue registers a function computing the value of key when unset.
func (ev *extendedViper) AddDefaultValue(key string, defaultValue DefaultValueFunction) {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	ev.defaultValues[key] = defaultValue
}
