package main

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionString(t *testing.T) {
	v := versionString()
	assert.Contains(t, v, version)
	assert.Contains(t, v, "commit "+commit)
	assert.Contains(t, v, runtime.Version())
	assert.Equal(t, v, rootCmd.Version)
}
