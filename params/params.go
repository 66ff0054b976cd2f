// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package params loads the configuration of a staking pool from yaml, toml or json.
package params

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/halvening/escrow"
	"github.com/vechain/halvening/periods"
	"github.com/vechain/halvening/pool"
	"github.com/vechain/halvening/schedule"
	"github.com/vechain/halvening/stakes"
)

const DefaultName = "default"

// Schedule configures the halving emission.
type Schedule struct {
	Start                uint64  `yaml:"start" toml:"start" json:"start"`
	CycleDuration        uint64  `yaml:"cycle-duration" toml:"cycle-duration" json:"cycleDuration"`
	InitialCycleEmission *Amount `yaml:"initial-cycle-emission" toml:"initial-cycle-emission" json:"initialCycleEmission"`
	MinRate              *Amount `yaml:"min-rate,omitempty" toml:"min-rate" json:"minRate,omitempty"`
}

// Periods configures the period grid. A nil start aligns it with the schedule,
// an explicit one may not come after it.
type Periods struct {
	Start    *uint64 `yaml:"start,omitempty" toml:"start" json:"start,omitempty"`
	Duration uint64  `yaml:"duration" toml:"duration" json:"duration"`
}

type Escrow struct {
	Funding *Amount `yaml:"funding" toml:"funding" json:"funding"`
}

// Config is a pool configuration.
type Config struct {
	Name     string         `yaml:"name" toml:"name" json:"name"`
	Funded   bool           `yaml:"funded" toml:"funded" json:"funded"`
	Schedule Schedule       `yaml:"schedule" toml:"schedule" json:"schedule"`
	Periods  Periods        `yaml:"periods" toml:"periods" json:"periods"`
	Classes  []stakes.Class `yaml:"classes" toml:"classes" json:"classes"`
	Escrow   Escrow         `yaml:"escrow" toml:"escrow" json:"escrow"`
	DataDir  string         `yaml:"data-dir" toml:"data-dir" json:"dataDir"`
}

// Load reads the file at path, the format is picked by its extension.
// Unknown fields are rejected. Defaults are applied, then the config is validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&c)
	case ".toml":
		var md toml.MetaData
		if md, err = toml.Decode(string(data), &c); err == nil {
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				err = errors.Errorf("unknown field %s", undecoded[0])
			}
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&c)
	default:
		return nil, errors.Errorf("unknown config file type %q", ext)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", path)
	}
	return &c, nil
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Periods.Duration == 0 {
		c.Periods.Duration = periods.DefaultDuration
	}
	if c.Periods.Start == nil {
		start := c.Schedule.Start
		c.Periods.Start = &start
	}
	if len(c.Classes) == 0 {
		c.Classes = stakes.DefaultClasses().List()
	}
}

// Validate checks the config is usable. Call ApplyDefaults first.
func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("name: empty")
	}
	if strings.Contains(c.Name, "/") {
		return errors.New("name: must not contain '/'")
	}
	if c.Schedule.CycleDuration == 0 {
		return errors.New("schedule.cycle-duration: must be positive")
	}
	if c.Schedule.InitialCycleEmission == nil {
		return errors.New("schedule.initial-cycle-emission: missing")
	}
	if c.Periods.Duration == 0 {
		return errors.New("periods.duration: must be positive")
	}
	if c.Periods.Start == nil {
		return errors.New("periods.start: missing")
	}
	if *c.Periods.Start > c.Schedule.Start {
		return errors.New("periods.start: must not be after schedule.start")
	}
	if _, err := stakes.NewClasses(c.Classes...); err != nil {
		return errors.Wrap(err, "classes")
	}
	return nil
}

// NewSchedule builds the configured halving schedule.
func (c *Config) NewSchedule() (*schedule.Halving, error) {
	var opts []schedule.Option
	if c.Schedule.MinRate != nil {
		opts = append(opts, schedule.WithMinRate(c.Schedule.MinRate.Int()))
	}
	return schedule.New(c.Schedule.Start, c.Schedule.CycleDuration, c.Schedule.InitialCycleEmission.Int(), opts...)
}

// PoolConfig builds the pool config around the given collaborators. sink may be nil.
func (c *Config) PoolConfig(token escrow.Token, sink pool.EventSink) (pool.Config, error) {
	sched, err := c.NewSchedule()
	if err != nil {
		return pool.Config{}, err
	}
	classes, err := stakes.NewClasses(c.Classes...)
	if err != nil {
		return pool.Config{}, err
	}
	cfg := pool.Config{
		Name:           c.Name,
		Schedule:       sched,
		Funded:         c.Funded,
		Classes:        classes,
		PeriodDuration: c.Periods.Duration,
		Token:          token,
		Sink:           sink,
	}
	if c.Periods.Start != nil {
		cfg.PeriodStart = *c.Periods.Start
	}
	return cfg, nil
}
