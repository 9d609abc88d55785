package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPorts_Validate(t *testing.T) {
	assert.NoError(t, (&Ports{Query: &mockQueryService{}}).Validate())
	assert.ErrorIs(t, (&Ports{}).Validate(), ErrMissingQueryService)

	var nilPorts *Ports
	assert.ErrorIs(t, nilPorts.Validate(), ErrMissingQueryService)
}
