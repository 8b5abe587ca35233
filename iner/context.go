package iner

import (
	"time"

	"github.com/indexkit/iner/clustermeta"
	"github.com/indexkit/iner/internal/sysaccess"
)

// SystemIndexAccessLevel is a type alias onto internal/sysaccess.Level
// so callers never need to import the internal package directly.
type SystemIndexAccessLevel = sysaccess.Level

const (
	SystemAccessAll                     = sysaccess.All
	SystemAccessBackwardsCompatibleOnly = sysaccess.BackwardsCompatibleOnly
	SystemAccessRestricted              = sysaccess.Restricted
	SystemAccessNone                    = sysaccess.None
)

// Context is the per-call immutable record spec.md §3 defines: a
// cluster snapshot, resolver options, and the request-scoped knobs and
// predicates that don't belong on IndicesOptions because they govern
// the resolver's own behavior rather than the query's.
type Context struct {
	Snapshot *clustermeta.Snapshot
	Options  IndicesOptions

	// StartTime anchors every date-math token resolved during this
	// call; read once, reused throughout (spec.md §5).
	StartTime time.Time

	PreserveAliases     bool
	ResolveToWriteIndex bool
	IncludeDataStreams  bool
	PreserveDataStreams bool

	SystemAccessLevel SystemIndexAccessLevel
	SystemAccess      func(name string) bool
	IsNetNewSystem    func(name string) bool
}

func (c *Context) clock() func() time.Time {
	t := c.StartTime
	return func() time.Time { return t }
}

func (c *Context) systemFilter() sysaccess.Filter {
	return sysaccess.Filter{
		AccessLevel:    c.SystemAccessLevel,
		SystemAccess:   c.SystemAccess,
		IsNetNewSystem: c.IsNetNewSystem,
	}
}
