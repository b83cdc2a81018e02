package config

import (
	"os"
	"strings"

	"github.com/arthur-debert/modlink/pkg/errors"
	"github.com/arthur-debert/modlink/pkg/logging"
	"github.com/arthur-debert/modlink/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read into the config
const EnvPrefix = "MODLINK_"

// Load merges embedded defaults, the user file at configFile (if it
// exists) and MODLINK_ environment variables.
func Load(configFile string) (*Config, error) {
	return LoadWithOverrides(configFile, nil)
}

// LoadWithOverrides is Load with a last layer of dotted keys, such as
// "games.skyrim.link_mode", taking precedence over everything else.
func LoadWithOverrides(configFile string, overrides map[string]interface{}) (*Config, error) {
	logger := logging.GetLogger("config")

	k, err := loadKoanf(configFile, overrides)
	if err != nil {
		return nil, err
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		if errors.GetErrorCode(err) == errors.ErrConfigValid {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	if err := postProcessConfig(&cfg); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("file", configFile).
		Strs("games", cfg.GameNames()).
		Str("linkMode", string(cfg.LinkMode)).
		Msg("Configuration loaded")

	return &cfg, nil
}

// ParseOverrides reads key=value pairs given on the command line
func ParseOverrides(pairs []string) (map[string]interface{}, error) {
	overrides := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "invalid override %q (expected key=value)", pair).
				WithDetail("override", pair)
		}
		overrides[strings.ToLower(key)] = strings.TrimSpace(value)
	}
	return overrides, nil
}

func loadKoanf(configFile string, overrides map[string]interface{}) (*koanf.Koanf, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User file
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to load config from %s", configFile).
					WithDetail("path", configFile)
			}
		}
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment")
	}

	// 4. Command line
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	return k, nil
}

// envKey maps MODLINK_GAMES__SKYRIM__DATA_DIR to games.skyrim.data_dir.
// Location overrides belong to pkg/paths and are skipped.
func envKey(name string) string {
	switch name {
	case paths.EnvStateDir, paths.EnvConfigDir:
		return ""
	}
	key := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

func postProcessConfig(cfg *Config) error {
	if cfg.LinkMode == "" {
		cfg.LinkMode = LinkSymlink
	}
	cfg.Downloads = paths.ExpandHome(cfg.Downloads)

	if cfg.Games == nil {
		cfg.Games = map[string]Game{}
	}

	for name, g := range cfg.Games {
		if g.Directory == "" {
			return errors.Newf(errors.ErrConfigValid, "game %q has no directory", name).
				WithDetail("game", name)
		}
		g.Directory = paths.ExpandHome(g.Directory)
		if g.DataDir == "" {
			g.DataDir = cfg.GameDefaults.DataDir
		}
		// "." opts out of the default data dir
		if g.DataDir == "." {
			g.DataDir = ""
		}
		if g.PluginFile == "" {
			g.PluginFile = cfg.GameDefaults.PluginFile
		}
		g.PluginFile = paths.ExpandHome(g.PluginFile)
		if g.EnabledMarker == "" {
			g.EnabledMarker = cfg.GameDefaults.EnabledMarker
		}
		cfg.Games[name] = g
	}

	if cfg.DefaultGame != "" {
		if _, _, err := cfg.Game(cfg.DefaultGame); err != nil {
			return errors.Wrap(err, errors.ErrConfigValid, "default_game does not name a configured game")
		}
	}

	return nil
}
