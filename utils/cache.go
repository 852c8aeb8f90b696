package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	listCacheTTL   = 10 * time.Minute
	cacheOpTimeout = 2 * time.Second

	channelListPrefix = "forum:channels:"
	threadListPrefix  = "forum:threads:"
)

// ChannelListKey names one cached page of the channel index.
func ChannelListKey(page, size int) string {
	return fmt.Sprintf("%s%d:%d", channelListPrefix, page, size)
}

// ThreadListKey names one cached page of a channel's threads.
func ThreadListKey(channel string, page, size int) string {
	return fmt.Sprintf("%s%s:%d:%d", threadListPrefix, channel, page, size)
}

// CacheGetBytes returns the cached value for key. It always misses without Redis.
func CacheGetBytes(key string) ([]byte, bool) {
	rc := GetRedis()
	if rc == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	b, err := rc.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// CacheSetJSON stores v as JSON under key for the list TTL.
func CacheSetJSON(key string, v interface{}) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		Sugar.Warnw("cache encode failed", "key", key, "err", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cacheOpTimeout)
	defer cancel()
	if err := rc.Set(ctx, key, b, listCacheTTL).Err(); err != nil {
		Sugar.Warnw("cache set failed", "key", key, "err", err)
	}
}

// InvalidateChannelLists drops every cached channel index page.
func InvalidateChannelLists() { invalidatePrefix(channelListPrefix) }

// InvalidateThreadLists drops cached thread pages of one channel, or of all
// channels when channel is empty.
func InvalidateThreadLists(channel string) {
	if channel == "" {
		invalidatePrefix(threadListPrefix)
		return
	}
	invalidatePrefix(threadListPrefix + channel + ":")
}

func invalidatePrefix(prefix string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*cacheOpTimeout)
	defer cancel()
	var keys []string
	iter := rc.Scan(ctx, 0, prefix+"*", 500).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		Sugar.Warnw("cache scan failed", "prefix", prefix, "err", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := rc.Unlink(ctx, keys...).Err(); err != nil {
		Sugar.Warnw("cache invalidate failed", "prefix", prefix, "err", err)
	}
}
