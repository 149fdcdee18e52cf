package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RsTokenBucketTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	ctx    context.Context
	clock  time.Time
}

func (s *RsTokenBucketTestSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.ctx = context.Background()
	s.clock = time.UnixMilli(1700000000000)
}

func (s *RsTokenBucketTestSuite) TearDownTest() {
	s.client.Close()
}

func TestRsTokenBucketSuite(t *testing.T) {
	suite.Run(t, new(RsTokenBucketTestSuite))
}

func (s *RsTokenBucketTestSuite) newLimiter(capacity int, rate float64) *RsBucketToken {
	limiter := NewRsBucketToken(s.client, &LimiterConfig{Capacity: capacity, RatePS: rate})
	limiter.now = func() time.Time { return s.clock }
	return limiter
}

func (s *RsTokenBucketTestSuite) allow(l *RsBucketToken, key string) bool {
	ok, err := l.Allow(s.ctx, key)
	require.NoError(s.T(), err)
	return ok
}

func (s *RsTokenBucketTestSuite) TestBasicRateLimit() {
	limiter := s.newLimiter(5, 2)

	for i := 0; i < 5; i++ {
		require.True(s.T(), s.allow(limiter, "test-basic"), "應該允許第 %d 次請求", i+1)
	}
	require.False(s.T(), s.allow(limiter, "test-basic"), "超過容量限制應該被拒絕")
}

func (s *RsTokenBucketTestSuite) TestTokenRefill() {
	limiter := s.newLimiter(2, 1)
	key := "test-refill"

	require.True(s.T(), s.allow(limiter, key))
	require.True(s.T(), s.allow(limiter, key))
	require.False(s.T(), s.allow(limiter, key))

	s.clock = s.clock.Add(1100 * time.Millisecond)

	require.True(s.T(), s.allow(limiter, key), "等待後應該有一個新的token")
	require.False(s.T(), s.allow(limiter, key), "不應該有第二個token")
}

func (s *RsTokenBucketTestSuite) TestFractionalRate() {
	limiter := s.newLimiter(1, 0.1)
	key := "test-fraction"

	require.True(s.T(), s.allow(limiter, key))
	s.clock = s.clock.Add(5 * time.Second)
	require.False(s.T(), s.allow(limiter, key))
	s.clock = s.clock.Add(5 * time.Second)
	require.True(s.T(), s.allow(limiter, key))
}

func (s *RsTokenBucketTestSuite) TestTinyRemainderStaysEmpty() {
	limiter := s.newLimiter(1, 0.01)
	key := "test-tiny"

	require.True(s.T(), s.allow(limiter, key))

	// 1ms 只補 0.00001 個 token
	s.clock = s.clock.Add(time.Millisecond)
	require.False(s.T(), s.allow(limiter, key))
	tokens := s.mr.HGet("ratelimit:"+key, "tokens")
	require.NotContains(s.T(), tokens, "e")
	require.Equal(s.T(), "0.000010000000", tokens)

	s.clock = s.clock.Add(time.Millisecond)
	require.False(s.T(), s.allow(limiter, key), "殘值不可被當成空 bucket 重新補滿")
	require.Equal(s.T(), "0.000020000000", s.mr.HGet("ratelimit:"+key, "tokens"))
}

func (s *RsTokenBucketTestSuite) TestMultipleKeys() {
	limiter := s.newLimiter(2, 1)

	require.True(s.T(), s.allow(limiter, "key1"))
	require.True(s.T(), s.allow(limiter, "key1"))
	require.False(s.T(), s.allow(limiter, "key1"))

	require.True(s.T(), s.allow(limiter, "key2"))
	require.True(s.T(), s.allow(limiter, "key2"))
	require.False(s.T(), s.allow(limiter, "key2"))
}

func (s *RsTokenBucketTestSuite) TestKeyExpires() {
	limiter := s.newLimiter(2, 1)
	require.True(s.T(), s.allow(limiter, "ttl"))
	require.True(s.T(), s.mr.Exists("ratelimit:ttl"))
	require.Equal(s.T(), 3*time.Second, s.mr.TTL("ratelimit:ttl"))
}

func (s *RsTokenBucketTestSuite) TestConcurrent() {
	limiter := s.newLimiter(10, 0)
	key := "test-concurrent"

	var mu sync.Mutex
	allowed := 0
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 4; j++ {
				ok, err := limiter.Allow(s.ctx, key)
				if err == nil && ok {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	require.Equal(s.T(), 10, allowed)
}

func (s *RsTokenBucketTestSuite) TestRedisDown() {
	limiter := s.newLimiter(1, 1)
	s.mr.Close()
	_, err := limiter.Allow(s.ctx, "down")
	require.Error(s.T(), err)
}
