//go:build tools

// Package tools pins the versions of the tools used to build and test the module.
package tools

import (
	_ "github.com/ory/go-acc"
)
