package service

import (
	"strings"

	"github.com/RoyceAzure/lab/ecommerce/internal/domain/model"
	"github.com/shopspring/decimal"
)

var (
	freeDeliveryThreshold = decimal.NewFromInt(500)
	standardDelivery      = decimal.NewFromInt(40)
	gstRate               = decimal.NewFromFloat(0.05)
)

// coupons 折扣碼對應折扣比例, 不認得的折扣碼視為沒有折扣
var coupons = map[string]decimal.Decimal{
	"FIRST20": decimal.NewFromFloat(0.20),
}

type Pricing struct {
	ItemsPrice     decimal.Decimal
	DeliveryCharge decimal.Decimal
	Gst            decimal.Decimal
	Discount       decimal.Decimal
	TotalAmount    decimal.Decimal
	// CouponCode 只有實際套用的折扣碼
	CouponCode string
}

// PriceOrder totalAmount = itemsPrice + deliveryCharge + gst - discount
func PriceOrder(items []model.OrderItem, couponCode string) Pricing {
	itemsPrice := decimal.Zero
	for i := range items {
		itemsPrice = itemsPrice.Add(items[i].Subtotal())
	}

	delivery := standardDelivery
	if itemsPrice.GreaterThanOrEqual(freeDeliveryThreshold) {
		delivery = decimal.Zero
	}

	// gst 與折扣四捨五入到整數
	gst := itemsPrice.Mul(gstRate).Round(0)

	discount := decimal.Zero
	applied := ""
	code := strings.ToUpper(strings.TrimSpace(couponCode))
	if pct, ok := coupons[code]; ok {
		discount = itemsPrice.Mul(pct).Round(0)
		applied = code
	}

	return Pricing{
		ItemsPrice:     itemsPrice,
		DeliveryCharge: delivery,
		Gst:            gst,
		Discount:       discount,
		TotalAmount:    itemsPrice.Add(delivery).Add(gst).Sub(discount),
		CouponCode:     applied,
	}
}
