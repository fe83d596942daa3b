package tracing

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestPipelineDescription(t *testing.T) {
	cmd := func(args ...any) redis.Cmder { return redis.NewCmd(context.Background(), args...) }

	assert.Equal(t, "PIPELINE: ", pipelineDescription(nil))
	assert.Equal(t, "PIPELINE: SET, GET", pipelineDescription([]redis.Cmder{cmd("set", "k", "v"), cmd("get", "k")}))
	assert.Equal(t, "PIPELINE: DEL, DEL, DEL, ...",
		pipelineDescription([]redis.Cmder{cmd("del", "a"), cmd("del", "b"), cmd("del", "c"), cmd("del", "d")}))
}
