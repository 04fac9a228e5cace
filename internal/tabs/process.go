package tabs

import (
	"context"
	"fmt"
	"time"
)

// ProcessAll calls Process on every tab in the order given, which is the
// declaration order, not the display order. The first error aborts the run.
// onDone, when set, is called after each tab.
func ProcessAll(ctx context.Context, env *Env, tabs []Tab, onDone func(Tab)) error {
	for _, tab := range tabs {
		if err := ctx.Err(); err != nil {
			return err
		}
		info := tab.Info()
		start := time.Now()
		if err := tab.Process(ctx, env); err != nil {
			return fmt.Errorf("process tab %q: %w", info.Name, err)
		}
		env.logger().Debug("tab processed", "tab", info.Name, "kind", string(info.Kind), "duration", time.Since(start))
		if onDone != nil {
			onDone(tab)
		}
	}
	return nil
}

// Walk visits each root followed by its children.
func Walk(roots []Tab, visit func(Tab)) {
	for _, root := range roots {
		visit(root)
		for _, child := range root.Info().Children {
			visit(child)
		}
	}
}
