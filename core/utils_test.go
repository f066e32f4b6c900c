package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanString(t *testing.T) {
	assert.Equal(t, "", CleanString(" \t\n "))
	assert.Equal(t, "Ali Khan", CleanString("  Ali \t  Khan\n"))
	assert.Equal(t, "ali khan", CleanString(" ALI  Khan ", true))
	assert.Equal(t, "ALI", CleanString("ALI", false))
}
