// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/shmonad/shmon/keeper"
	"github.com/shmonad/shmon/ledger"
	"github.com/shmonad/shmon/staking/sim"
)

// Config is the YAML config file. Absent keys keep their defaults.
type Config struct {
	Ledger ledger.Params  `yaml:"ledger"`
	Keeper keeper.Options `yaml:"keeper"`
	Sim    sim.Config     `yaml:"sim"`
}

func defaultConfig() Config {
	return Config{
		Ledger: ledger.DefaultParams(),
		Keeper: keeper.DefaultOptions(),
		Sim:    sim.DefaultConfig(),
	}
}

// loadConfig overlays the file at path on the defaults. An empty path
// returns the defaults.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "read config")
	}
	if err := parseConfig(data, &cfg); err != nil {
		return cfg, errors.WithMessagef(err, "config %s", path)
	}
	return cfg, nil
}

func parseConfig(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errors.Wrap(err, "decode")
	}
	if err := cfg.Ledger.Validate(); err != nil {
		return errors.WithMessage(err, "ledger")
	}
	if err := cfg.Keeper.Validate(); err != nil {
		return errors.WithMessage(err, "keeper")
	}
	return nil
}
