// Copyright 2019 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diff renders unified diffs of rewritten section files by running
// the system diff tool.
package diff

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// command builds the diff invocation for two files.
var command = func(oldFile, newFile string) *exec.Cmd {
	return exec.Command("diff", "-u", oldFile, newFile)
}

// Diff returns a unified diff from old to new, labelled with the given
// names. It returns nil when the inputs are identical.
func Diff(oldName string, old []byte, newName string, new []byte) ([]byte, error) {
	if bytes.Equal(old, new) {
		return nil, nil
	}

	f1, err := writeTemp(old)
	if err != nil {
		return nil, err
	}
	defer os.Remove(f1)

	f2, err := writeTemp(new)
	if err != nil {
		return nil, err
	}
	defer os.Remove(f2)

	// diff exits 1 when the inputs differ and 2 on trouble.
	out, err := command(f1, f2).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			if exitErr != nil && len(exitErr.Stderr) > 0 {
				return nil, fmt.Errorf("run diff: %w: %s", err, bytes.TrimSpace(exitErr.Stderr))
			}
			return nil, fmt.Errorf("run diff: %w", err)
		}
	}

	// Drop the tool's "--- tmpfile" and "+++ tmpfile" lines.
	hunks := bytes.Index(out, []byte("\n@@"))
	if hunks < 0 {
		return out, nil
	}
	header := fmt.Sprintf("--- %s\n+++ %s\n", oldName, newName)
	return append([]byte(header), out[hunks+1:]...), nil
}

func writeTemp(data []byte) (string, error) {
	f, err := os.CreateTemp("", "swupfix-diff")
	if err != nil {
		return "", err
	}
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
