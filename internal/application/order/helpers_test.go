package order_test

import "github.com/Zhima-Mochi/minishop-orders/internal/application/payment"

func paymentIn(method string) payment.Input {
	return payment.Input{Method: method}
}
