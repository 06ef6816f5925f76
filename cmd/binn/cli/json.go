// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"io"
	"reflect"
)

// JSONOutput adds a --json flag to a command's params struct by
// embedding:
//
//	type hashParams struct {
//	    cli.JSONOutput
//	    Value bool `flag:"value" desc:"hash each decoded value"`
//	}
//
// Run then calls EmitJSON first and falls through to text output when
// it reports false.
type JSONOutput struct {
	OutputJSON bool `json:"-" flag:"json" desc:"print the result as JSON"`
}

// EmitJSON writes result to w as indented JSON when --json is set and
// reports whether it did. A nil slice is written as [] rather than
// null.
func (j *JSONOutput) EmitJSON(w io.Writer, result any) (bool, error) {
	if !j.OutputJSON {
		return false, nil
	}
	if v := reflect.ValueOf(result); v.Kind() == reflect.Slice && v.IsNil() {
		result = reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return true, encoder.Encode(result)
}
