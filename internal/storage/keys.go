package storage

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

var node *snowflake.Node

func init() {
	node, _ = snowflake.NewNode(1)
}

// NewKey builds a unique object key such as "avatars/2024/05/01/1790...123.png".
func NewKey(prefix, ext string) string {
	return fmt.Sprintf("%s/%s/%d.%s",
		prefix,
		time.Now().Format("2006/01/02"),
		node.Generate().Int64(),
		ext,
	)
}
