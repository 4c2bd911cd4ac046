// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permchain/chain"
	"github.com/bitmark-inc/permchain/configuration"
)

const testingConfiguration = `
local M = {}
M.data_directory = "."
M.chain = "Testing"
M.pidfile = "permchaind.pid"
M.database = {
    name = "ledger",
}
M.policy = {
    protocol = {
        version = protocol.stream_filters,
        custom_permissions = true,
    },
    anyone_can = {
        connect = true,
    },
    fees = {
        mandatory_per_kb = 100,
    },
}
M.filters = {
    timeout = 250,
}
M.logging = {
    size = 4096,
    count = 3,
}
return M
`

func writeConfiguration(t *testing.T, text string) (string, string) {
	directory, err := ioutil.TempDir("", "configuration")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	fileName := filepath.Join(directory, "permchaind.conf")
	if err := ioutil.WriteFile(fileName, []byte(text), 0600); nil != err {
		t.Fatalf("write error: %s", err)
	}
	return directory, fileName
}

func TestGetConfiguration(t *testing.T) {
	directory, fileName := writeConfiguration(t, testingConfiguration)
	defer os.RemoveAll(directory)

	options, err := configuration.GetConfiguration(fileName)
	if !assert.Nil(t, err, "configuration error") {
		return
	}

	assert.Equal(t, chain.Testing, options.Chain, "chain")
	assert.Equal(t, filepath.Clean(directory+"/"), filepath.Clean(options.DataDirectory), "data directory")
	assert.Equal(t, filepath.Join(directory, "permchaind.pid"), options.PidFile, "pid file")
	assert.Equal(t, filepath.Join(directory, "data"), options.Database.Directory, "database directory")
	assert.Equal(t, filepath.Join(directory, "data", "ledger"), options.Database.Name, "database name")
	assert.Equal(t, filepath.Join(directory, "log"), options.Logging.Directory, "log directory")
	assert.Equal(t, "permchaind.log", options.Logging.File, "log file")
	assert.Equal(t, 4096, options.Logging.Size, "log size")
	assert.Equal(t, 3, options.Logging.Count, "log count")

	assert.Equal(t, 250*time.Millisecond, options.Filters.Duration(), "filter timeout")
	assert.True(t, options.Filters.Enabled, "filters enabled by default")

	// chain defaults are kept where the file is silent
	p := &options.Policy
	assert.Equal(t, 20010, p.ProtocolVersion(), "protocol")
	assert.False(t, p.RequireStandard(), "testing chain default")
	assert.True(t, p.AnyoneCanReceiveEmpty(), "testing chain default")
	assert.True(t, p.AllowMultisigOutputs(), "default")
	assert.Equal(t, int64(100), p.MandatoryFeePerKB(), "mandatory fee")
	assert.True(t, p.PermissionOptions().AnyoneCanConnect, "anyone can connect")
	assert.True(t, p.PermissionOptions().CustomPermissions, "custom permissions")

	for _, d := range []string{options.Database.Directory, options.Logging.Directory} {
		info, err := os.Stat(d)
		assert.Nil(t, err, "stat: %s", d)
		assert.True(t, info.IsDir(), "directory: %s", d)
	}
}

func TestGetConfigurationDefaults(t *testing.T) {
	directory, fileName := writeConfiguration(t, `return { data_directory = "." }`)
	defer os.RemoveAll(directory)

	options, err := configuration.GetConfiguration(fileName)
	if !assert.Nil(t, err, "configuration error") {
		return
	}
	assert.Equal(t, chain.Main, options.Chain, "chain")
	assert.Equal(t, "", options.PidFile, "no pid file")
	assert.Equal(t, "main", filepath.Base(options.Database.Name), "database name")
	assert.True(t, options.Policy.RequireStandard(), "main chain default")
	assert.Equal(t, time.Second, options.Filters.Duration(), "filter timeout")
}

func TestGetConfigurationErrors(t *testing.T) {
	items := []struct {
		name string
		text string
	}{
		{"unknown chain", `return { data_directory = ".", chain = "elsewhere" }`},
		{"no data directory", `return { chain = "local" }`},
		{"missing data directory", `return { data_directory = "/no/such/directory/here" }`},
		{"path as database name", `return { data_directory = ".", database = { name = "a/b" } }`},
		{"bad protocol", `return { data_directory = ".", policy = { protocol = { version = -1 } } }`},
		{"bad seed node", `return { data_directory = ".", policy = { seed_node = "xyz" } }`},
		{"lua syntax", `return {`},
		{"not a table", `return 5`},
	}

	for _, item := range items {
		directory, fileName := writeConfiguration(t, item.text)
		_, err := configuration.GetConfiguration(fileName)
		assert.NotNil(t, err, "expected error for: %s", item.name)
		os.RemoveAll(directory)
	}
}
