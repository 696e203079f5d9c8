// Package config loads default command-line options from a YAML file.
package config

import (
	"bytes"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/praetorian-inc/searchbin/pkg/types"
)

// File holds option defaults. Unset fields leave the built-in default alone.
type File struct {
	Before        *int    `yaml:"before"`
	After         *int    `yaml:"after"`
	BufferSize    *int    `yaml:"buffer-size"`
	Start         *int64  `yaml:"start"`
	End           *int64  `yaml:"end"`
	MaxMatches    *int    `yaml:"max-matches"`
	Log           *string `yaml:"log"`
	Verbose       *bool   `yaml:"verbose"`
	Debug         *bool   `yaml:"debug"`
	Format        *string `yaml:"format"`
	Color         *string `yaml:"color"`
	DB            *string `yaml:"db"`
	Recursive     *bool   `yaml:"recursive"`
	IncludeHidden *bool   `yaml:"include-hidden"`
	FollowLinks   *bool   `yaml:"follow-symlinks"`
	KeepGoing     *bool   `yaml:"keep-going"`
}

// Load reads and parses a YAML option file. Unknown keys are rejected.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.Wrap(types.ConfigError, path, err, "reading config file")
	}
	return Parse(data, path)
}

// Parse decodes YAML option data. name identifies the source in errors.
func Parse(data []byte, name string) (*File, error) {
	var f File
	if len(bytes.TrimSpace(data)) == 0 {
		return &f, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, types.Wrap(types.ConfigError, name, err, "parsing config file")
	}
	return &f, nil
}

// Values returns the set options keyed by flag name, formatted for
// pflag's Set.
func (f *File) Values() map[string]string {
	values := make(map[string]string)
	putInt := func(name string, v *int) {
		if v != nil {
			values[name] = strconv.Itoa(*v)
		}
	}
	putInt64 := func(name string, v *int64) {
		if v != nil {
			values[name] = strconv.FormatInt(*v, 10)
		}
	}
	putString := func(name string, v *string) {
		if v != nil {
			values[name] = *v
		}
	}
	putBool := func(name string, v *bool) {
		if v != nil {
			values[name] = strconv.FormatBool(*v)
		}
	}

	putInt("before", f.Before)
	putInt("after", f.After)
	putInt("buffer-size", f.BufferSize)
	putInt64("start", f.Start)
	putInt64("end", f.End)
	putInt("max-matches", f.MaxMatches)
	putString("log", f.Log)
	putBool("verbose", f.Verbose)
	putBool("debug", f.Debug)
	putString("format", f.Format)
	putString("color", f.Color)
	putString("db", f.DB)
	putBool("recursive", f.Recursive)
	putBool("include-hidden", f.IncludeHidden)
	putBool("follow-symlinks", f.FollowLinks)
	putBool("keep-going", f.KeepGoing)
	return values
}
