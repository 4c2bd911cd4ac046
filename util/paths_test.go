// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/permchain/util"
)

func TestEnsureAbsolute(t *testing.T) {
	assert.Equal(t, "/a/b/c", util.EnsureAbsolute("/a", "b/c"), "relative")
	assert.Equal(t, "/x/y", util.EnsureAbsolute("/a", "/x/../x/y"), "absolute")
}

func TestEnsureDirectory(t *testing.T) {
	base, err := ioutil.TempDir("", "paths")
	if nil != err {
		t.Fatalf("temp dir error: %s", err)
	}
	defer os.RemoveAll(base)

	d, err := util.EnsureDirectory(base, "data/ledger")
	assert.Nil(t, err, "create")
	assert.Equal(t, filepath.Join(base, "data", "ledger"), d, "path")

	info, err := os.Stat(d)
	assert.Nil(t, err, "stat")
	assert.True(t, info.IsDir(), "is directory")
}
