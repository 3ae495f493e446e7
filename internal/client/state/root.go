package state

import (
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/query"
)

// Root combines every slice of client state.
type Root struct {
	Cart                CartState
	OrderCreate         OrderCreateState
	OrderDetails        OrderDetailsState
	OrderPay            OrderStatusState
	OrderDeliver        OrderStatusState
	OrderListMy         OrderListMyState
	OrderList           OrderListState
	ProductList         ProductListState
	ProductReviewCreate ProductReviewCreateState
	UserLogin           UserLoginState
}

func InitialRoot() Root {
	return Root{
		Cart:         CartState{CartItems: []CartItem{}},
		OrderDetails: InitialOrderDetails(),
		OrderListMy:  OrderListMyState{Orders: []order.Order{}},
		OrderList:    OrderListState{Orders: []query.OrderDetails{}},
		ProductList:  ProductListState{Products: []product.Product{}},
	}
}

// Reduce passes the action to every slice reducer.
func Reduce(s Root, a Action) Root {
	return Root{
		Cart:                ReduceCart(s.Cart, a),
		OrderCreate:         ReduceOrderCreate(s.OrderCreate, a),
		OrderDetails:        ReduceOrderDetails(s.OrderDetails, a),
		OrderPay:            ReduceOrderPay(s.OrderPay, a),
		OrderDeliver:        ReduceOrderDeliver(s.OrderDeliver, a),
		OrderListMy:         ReduceOrderListMy(s.OrderListMy, a),
		OrderList:           ReduceOrderList(s.OrderList, a),
		ProductList:         ReduceProductList(s.ProductList, a),
		ProductReviewCreate: ReduceProductReviewCreate(s.ProductReviewCreate, a),
		UserLogin:           ReduceUserLogin(s.UserLogin, a),
	}
}
