package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionsCommandStructure(t *testing.T) {
	assert.NotNil(t, collectionsCmd)
	assert.Equal(t, "collections", collectionsCmd.Use)
	assert.NotEmpty(t, collectionsCmd.Short)
	assert.NotNil(t, collectionsCmd.RunE)
	assert.NotNil(t, collectionsCmd.Flags().Lookup("format"))
}

func TestRefreshCommandStructure(t *testing.T) {
	assert.NotNil(t, refreshCmd)
	assert.Equal(t, "refresh <collection>", refreshCmd.Use)
	assert.NotNil(t, refreshCmd.RunE)
	assert.NotNil(t, refreshCmd.Args)
}

func TestValidateCommandStructure(t *testing.T) {
	assert.NotNil(t, validateCmd)
	assert.Equal(t, "validate", validateCmd.Use)
	assert.NotEmpty(t, validateCmd.Long)
	assert.NotNil(t, validateCmd.RunE)
}
