package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewRequestID returns a snowflake id from the process-wide node configured by
// SNOWFLAKE_NODE (default 1). Falls back to a KSUID when the node is unusable.
func NewRequestID() string {
	nodeOnce.Do(func() {
		id := int64(1)
		if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil {
				id = n
			}
		}
		node, _ = snowflake.NewNode(id)
	})
	if node == nil {
		return NewKSUID()
	}
	return node.Generate().String()
}
