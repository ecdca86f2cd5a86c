package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyFmt = "onboard:session:%d"

// Login sessions are mirrored in Redis so a token revoked by logout dies
// immediately, whatever its JWT expiry says.

func SetSession(rdb *redis.Client, userId uint, token string, duration time.Duration) error {
	ctx := context.Background()
	key := fmt.Sprintf(sessionKeyFmt, userId)
	return rdb.Set(ctx, key, token, duration).Err()
}

func GetSession(rdb *redis.Client, userId uint) (string, error) {
	ctx := context.Background()
	key := fmt.Sprintf(sessionKeyFmt, userId)
	return rdb.Get(ctx, key).Result()
}

func DeleteSession(rdb *redis.Client, userId uint) error {
	ctx := context.Background()
	key := fmt.Sprintf(sessionKeyFmt, userId)
	return rdb.Del(ctx, key).Err()
}

// ActiveSessionCount returns the number of users currently logged in
func ActiveSessionCount(rdb *redis.Client) (int, error) {
	ctx := context.Background()
	var cursor uint64
	count := 0
	for {
		keys, newCursor, err := rdb.Scan(ctx, cursor, "onboard:session:*", 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		if newCursor == 0 {
			break
		}
		cursor = newCursor
	}
	return count, nil
}
