package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// RandomDigits 產生指定長度的數字字串, 使用 crypto/rand
func RandomDigits(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}

// GenerateOrderNumber ORD + unix millis + 4 位亂數
func GenerateOrderNumber(now time.Time) string {
	suffix, err := RandomDigits(4)
	if err != nil {
		suffix = fmt.Sprintf("%04d", now.Nanosecond()%10000)
	}
	return fmt.Sprintf("ORD%d%s", now.UnixMilli(), suffix)
}
