package classroom

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ianchen-tw/invisible-hand/core"
)

// SubscribeResult partitions repos after a read-access grant run.
type SubscribeResult struct {
	Granted []string
	Failed  []string
}

// GrantReadAccess subscribes the team to every repo with pull permission,
// fanning out up to maxConcurrent requests. Failures are collected; one
// failing repo never cancels the others.
func GrantReadAccess(ctx context.Context, team *Team, repos []string, log core.Logger, maxConcurrent int) SubscribeResult {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	ok := make([]bool, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)
	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			if err := team.GrantRead(gctx, repo); err != nil {
				log.Warn("granting read access failed", map[string]interface{}{"repo": repo, "err": err.Error()})
				return nil
			}
			ok[i] = true
			return nil
		})
	}
	_ = g.Wait()

	var res SubscribeResult
	for i, repo := range repos {
		if ok[i] {
			res.Granted = append(res.Granted, repo)
		} else {
			res.Failed = append(res.Failed, repo)
		}
	}
	sort.Strings(res.Granted)
	sort.Strings(res.Failed)
	return res
}
