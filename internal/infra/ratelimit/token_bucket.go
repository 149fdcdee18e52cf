package ratelimit

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type LimiterConfig struct {
	Capacity  int
	RatePS    float64 // 每秒補充的 token 數
	KeyPrefix string
}

func GetDefaultLimiterConfig() LimiterConfig {
	return LimiterConfig{
		Capacity:  5,
		RatePS:    0.1,
		KeyPrefix: "ratelimit",
	}
}

// RedisClient 只需要 Eval
type RedisClient interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// 數值一律以字串寫回 hash, 時間單位為毫秒
// tokens 用固定小數格式, tostring 遇到極小值會輸出 1e-05 這類 tonumber 讀不回來的字串
var tokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1])
local lastRefill = tonumber(bucket[2])

if tokens == nil then
	tokens = capacity
	lastRefill = now
end

local elapsed = math.max(0, now - lastRefill) / 1000
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
	tokens = tokens - 1
	allowed = 1
end

redis.call('HSET', key, 'tokens', string.format('%.12f', tokens), 'last_refill', ARGV[3])
redis.call('EXPIRE', key, ttl)
return allowed
`

// RsBucketToken redis 上的 token bucket, 多個 instance 共用同一份額度
type RsBucketToken struct {
	LimiterConfig
	client RedisClient
	now    func() time.Time
}

func NewRsBucketToken(client RedisClient, config *LimiterConfig) *RsBucketToken {
	if client == nil {
		panic("redis client cannot be nil")
	}
	rb := &RsBucketToken{client: client, now: time.Now}
	if config != nil {
		rb.LimiterConfig = *config
	} else {
		rb.LimiterConfig = GetDefaultLimiterConfig()
	}
	if rb.KeyPrefix == "" {
		rb.KeyPrefix = "ratelimit"
	}
	return rb
}

// ttl 為 bucket 從空到滿所需時間, 之後 key 自然過期等同於滿的 bucket
func (r *RsBucketToken) ttl() int {
	if r.RatePS <= 0 {
		return 3600
	}
	return int(math.Ceil(float64(r.Capacity)/r.RatePS)) + 1
}

// Allow 消耗一個 token, 回傳是否允許
func (r *RsBucketToken) Allow(ctx context.Context, key string) (bool, error) {
	result, err := r.client.Eval(
		ctx,
		tokenBucketScript,
		[]string{r.KeyPrefix + ":" + key},
		r.Capacity,
		strconv.FormatFloat(r.RatePS, 'f', -1, 64),
		r.now().UnixMilli(),
		r.ttl(),
	).Int64()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
