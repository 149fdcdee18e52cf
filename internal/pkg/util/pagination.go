package util

import (
	"strconv"

	"github.com/RoyceAzure/lab/ecommerce/internal/constants"
)

// NormalizePaging 非法或缺少的分頁參數套用預設值
func NormalizePaging(pageStr, limitStr string) (page int, limit int) {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = constants.DefaultPaging
	}
	limit, err = strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = constants.DefaultPagingSize
	}
	if limit > constants.MaxPagingSize {
		limit = constants.MaxPagingSize
	}
	return
}

func Offset(page, limit int) int {
	return (page - 1) * limit
}
