// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// ExitError ends the process with Code and prints nothing more. The
// command has already written whatever the user needs to see.
//
// validate returns ExitError{Code: 1} for a stream that decodes but is
// not canonical, and the jq filter passes jq's status through with it.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// ExitCode lets main tell an intended status apart from a failure it
// should report.
func (e *ExitError) ExitCode() int { return e.Code }
