package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/sabaq/backend/storage/cache"
)

var errNoCache = errors.New("no cache configured (set CACHE_URL)")

func (cli *commandLine) flushCache(ctx context.Context) error {
	if cli.cache == nil {
		return errNoCache
	}
	if err := cache.Invalidate(ctx, cli.cache); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cli.out, "content cache flushed")
	return nil
}
