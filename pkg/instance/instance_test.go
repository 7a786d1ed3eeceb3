package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDPrefersExplicitSetting(t *testing.T) {
	t.Setenv("OBOHUB_INSTANCE_ID", "api-1")
	t.Setenv("DYNO", "web.1")
	assert.Equal(t, "api-1", ID())

	t.Setenv("OBOHUB_INSTANCE_ID", "")
	assert.Equal(t, "web.1", ID())
}
