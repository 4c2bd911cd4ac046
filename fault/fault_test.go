// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/bitmark-inc/permchain/fault"
)

var (
	ErrConservationOne = fault.ConservationError("conservation one")
	ErrConservationTwo = fault.ConservationError("conservation two")
	ErrExistsOne       = fault.ExistsError("exists one ")
	ErrExistsTwo       = fault.ExistsError("exists two")
	ErrInvalidOne      = fault.InvalidError("invalid one")
	ErrInvalidTwo      = fault.InvalidError("invalid two")
	ErrNotFoundOne     = fault.NotFoundError("not found one")
	ErrNotFoundTwo     = fault.NotFoundError("not found two")
	ErrPermissionOne   = fault.PermissionError("permission one")
	ErrPermissionTwo   = fault.PermissionError("permission two")
	ErrProcessOne      = fault.ProcessError("process one")
	ErrProcessTwo      = fault.ProcessError("process two")
	ErrScriptOne       = fault.ScriptError("script one")
	ErrScriptTwo       = fault.ScriptError("script two")
)

// test that the various error classes can be distinguished
func TestClasses(t *testing.T) {
	errorList := []struct {
		err          error
		conservation bool
		exists       bool
		invalid      bool
		notFound     bool
		permission   bool
		process      bool
		script       bool
	}{
		{ErrConservationOne, true, false, false, false, false, false, false},
		{ErrConservationTwo, true, false, false, false, false, false, false},
		{ErrExistsOne, false, true, false, false, false, false, false},
		{ErrExistsTwo, false, true, false, false, false, false, false},
		{ErrInvalidOne, false, false, true, false, false, false, false},
		{ErrInvalidTwo, false, false, true, false, false, false, false},
		{ErrNotFoundOne, false, false, false, true, false, false, false},
		{ErrNotFoundTwo, false, false, false, true, false, false, false},
		{ErrPermissionOne, false, false, false, false, true, false, false},
		{ErrPermissionTwo, false, false, false, false, true, false, false},
		{ErrProcessOne, false, false, false, false, false, true, false},
		{ErrProcessTwo, false, false, false, false, false, true, false},
		{ErrScriptOne, false, false, false, false, false, false, true},
		{ErrScriptTwo, false, false, false, false, false, false, true},
		{fault.ErrAssetQuantityMismatch, true, false, false, false, false, false, false},
		{fault.ErrEntityExists, false, true, false, false, false, false, false},
		{fault.ErrInputsNotValidIssuer, false, false, false, false, true, false, false},
		{fault.ErrCannotInsertAsset, false, false, false, false, false, true, false},
		{fault.ErrSigScriptNotPushOnly, false, false, false, false, false, false, true},
	}

	for i, e := range errorList {
		err := e.err
		if fault.IsErrConservation(err) != e.conservation {
			t.Errorf("%d: expected 'conservation' == %v for err = %v", i, e.conservation, err)
		}
		if fault.IsErrExists(err) != e.exists {
			t.Errorf("%d: expected 'exists' == %v for err = %v", i, e.exists, err)
		}
		if fault.IsErrInvalid(err) != e.invalid {
			t.Errorf("%d: expected 'invalid' == %v for err = %v", i, e.invalid, err)
		}
		if fault.IsErrNotFound(err) != e.notFound {
			t.Errorf("%d: expected 'not found' == %v for err = %v", i, e.notFound, err)
		}
		if fault.IsErrPermission(err) != e.permission {
			t.Errorf("%d: expected 'permission' == %v for err = %v", i, e.permission, err)
		}
		if fault.IsErrProcess(err) != e.process {
			t.Errorf("%d: expected 'process' == %v for err = %v", i, e.process, err)
		}
		if fault.IsErrScript(err) != e.script {
			t.Errorf("%d: expected 'script' == %v for err = %v", i, e.script, err)
		}
	}
}

// filter rejections carry their own reason text
func TestFilterClass(t *testing.T) {
	err := error(fault.FilterError("The transaction did not pass filter x: y"))
	if !fault.IsErrFilter(err) {
		t.Errorf("expected 'filter' for err = %v", err)
	}
	if fault.IsErrFilter(fault.ErrInputsNotValidAdmin) {
		t.Errorf("unexpected 'filter' for err = %v", fault.ErrInputsNotValidAdmin)
	}
	if fault.IsErrPermission(err) {
		t.Errorf("unexpected 'permission' for err = %v", err)
	}
}
