// Copyright (c) 2025 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package templates

import (
	"embed"
	"io/fs"
)

//go:embed *.md *.yaml
var embeddedFS embed.FS

const (
	// PolicyTemplate is the annotated policy document served as policy://template.
	PolicyTemplate = "policy-template.yaml"
	// Instructions is the server instructions template.
	Instructions = "instructions.md"
)

// EmbedFS defines the interface for accessing embedded template files.
// It abstracts the [embed.FS] type so tests can substitute their own files.
type EmbedFS interface {
	// ReadFile reads the named file and returns the contents.
	ReadFile(name string) ([]byte, error)

	// ReadDir reads the named directory and returns a list of directory entries.
	ReadDir(name string) ([]fs.DirEntry, error)

	// Open opens the named file for reading.
	Open(name string) (fs.File, error)
}

// embedFS wraps [embed.FS] to implement EmbedFS interface.
type embedFS struct{ fs embed.FS }

func (e *embedFS) ReadFile(name string) ([]byte, error) { return e.fs.ReadFile(name) }

func (e *embedFS) ReadDir(name string) ([]fs.DirEntry, error) { return e.fs.ReadDir(name) }

func (e *embedFS) Open(name string) (fs.File, error) { return e.fs.Open(name) }

// MagicEmbed is the embedded filesystem holding the policy template and
// the server instructions.
//
// Example:
//
//	data, err := templates.MagicEmbed.ReadFile(templates.PolicyTemplate)
//	if err != nil {
//		return fmt.Errorf("failed to read policy template: %w", err)
//	}
var MagicEmbed EmbedFS = &embedFS{fs: embeddedFS}
