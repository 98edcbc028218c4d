package hostfile

import (
	"testing"

	"github.com/shardrun/shardrun/srcs/go/utils/assert"
)

func Test_Parse(t *testing.T) {
	text := `
	# ...
	gpu-01 slots=4 # ...
	# ...
   	gpu-02 slots=8 public_addr=10.0.0.2 # ...
	`
	hl, err := Parse(text)
	assert.OK(err)
	assert.True(len(hl) == 2)
	assert.True(hl[0].Hostname == `gpu-01`)
	assert.True(hl[0].Slots == 4)
	assert.True(hl[1].Slots == 8)
	assert.True(hl[1].PublicAddr == `10.0.0.2`)
}

func Test_Parse_invalid(t *testing.T) {
	_, err := Parse(`gpu-01 slots=x`)
	assert.True(err != nil)
}
