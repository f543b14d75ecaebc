package main

import (
	"github.com/BurntSushi/toml"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/jamessynge/outlinemerge/merge"
)

// loadConfigFile reads a TOML config file into config, which is bound to
// flags. Flags set explicitly on the command line keep their values.
//
//	delete-policy = "deletes-win"
//	conflict-policy = "fork"
//
//	[differencer]
//	timeout = "2s"
//	edit-cost = 4
func loadConfigFile(fileName string, config *merge.Config, flags *pflag.FlagSet) error {
	changed := make(map[string]string)
	flags.Visit(func(f *pflag.Flag) {
		changed[f.Name] = f.Value.String()
	})

	md, err := toml.DecodeFile(fileName, config)
	if err != nil {
		return errors.Wrapf(err, "loading config file %s", fileName)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.Errorf("config file %s: unknown keys %v", fileName, undecoded)
	}
	glog.V(1).Infof("Loaded config from %s: %+v", fileName, *config)

	for name, value := range changed {
		if err := flags.Set(name, value); err != nil {
			return errors.Wrapf(err, "reapplying --%s", name)
		}
	}
	return nil
}
