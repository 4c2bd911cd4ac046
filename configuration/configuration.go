// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/permchain/chain"
	"github.com/bitmark-inc/permchain/policy"
	"github.com/bitmark-inc/permchain/util"
)

// basic defaults (directories and files are relative to the
// "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultLevelDBDirectory = "data"

	defaultLogDirectory = "log"
	defaultLogFile      = "permchaind.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultFilterTimeout = 1000 // milliseconds
)

// LoglevelMap - to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		"main":            "info",
		logger.DefaultTag: "critical",
	}
)

// DatabaseType - location of the leveldb files
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// FilterType - limits on user filter execution
type FilterType struct {
	Timeout int  `gluamapper:"timeout" json:"timeout"`
	Enabled bool `gluamapper:"enabled" json:"enabled"`
}

// Duration - the filter timeout as a duration
func (f FilterType) Duration() time.Duration {
	return time.Duration(f.Timeout) * time.Millisecond
}

// Configuration - everything read from the configuration file
type Configuration struct {
	DataDirectory string               `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string               `gluamapper:"pidfile" json:"pidfile"`
	Chain         string               `gluamapper:"chain" json:"chain"`
	Database      DatabaseType         `gluamapper:"database" json:"database"`
	Policy        policy.Parameters    `gluamapper:"policy" json:"policy"`
	Filters       FilterType           `gluamapper:"filters" json:"filters"`
	Logging       logger.Configuration `gluamapper:"logging" json:"logging"`
}

// defaults that depend on the chain
func defaults(chainName string) *Configuration {
	return &Configuration{
		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		Chain:         chainName,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      chainName,
		},

		Policy: *policy.New(chainName),

		Filters: FilterType{
			Timeout: defaultFilterTimeout,
			Enabled: true,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}
}

// GetConfiguration - will read decode and verify the configuration
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	// the first read only determines the chain, so that its
	// defaults are in place before the second read overlays them
	options := defaults(chain.Main)
	if err := ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	chainName := chain.Canonical(options.Chain)
	if !chain.Valid(chainName) {
		return nil, fmt.Errorf("chain: %q is not supported", options.Chain)
	}

	if chain.Main != chainName {
		options = defaults(chainName)
		if err := ParseConfigurationFile(configurationFileName, options); err != nil {
			return nil, err
		}
	}
	options.Chain = chainName

	if err := options.Policy.Validate(); nil != err {
		return nil, fmt.Errorf("policy: %s", err)
	}

	if options.Filters.Timeout <= 0 {
		options.Filters.Timeout = defaultFilterTimeout
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("path: %q is not a directory", options.DataDirectory)
	}

	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = util.EnsureAbsolute(options.DataDirectory, *f)
		}
	}

	// make absolute and create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		*d, err = util.EnsureDirectory(options.DataDirectory, *d)
		if nil != err {
			return nil, err
		}
	}

	// fail if any of these are not simple file names
	// the database name becomes a prefix inside its directory
	mustNotBePaths := [][2]*string{
		{&options.Database.Name, &options.Database.Directory},
		{&options.Logging.File, nil},
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f[0]) {
		case "", ".":
			if nil != f[1] {
				*f[0] = util.EnsureAbsolute(*f[1], *f[0])
			}
		default:
			return nil, fmt.Errorf("files: %q is not plain name", *f[0])
		}
	}

	return options, nil
}
