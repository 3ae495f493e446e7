package state

import (
	"github.com/example/ec-storefront/internal/domain/order"
	"github.com/example/ec-storefront/internal/query"
)

type OrderCreateState struct {
	Loading bool
	Success bool
	Order   *order.Order
	Error   string
}

func ReduceOrderCreate(s OrderCreateState, a Action) OrderCreateState {
	switch a.Type {
	case OrderCreateRequest:
		return OrderCreateState{Loading: true}
	case OrderCreateSuccess:
		o, _ := a.Payload.(order.Order)
		return OrderCreateState{Success: true, Order: &o}
	case OrderCreateFail:
		return OrderCreateState{Error: a.Error}
	case OrderCreateReset:
		return OrderCreateState{}
	}
	return s
}

type OrderDetailsState struct {
	Loading bool
	Order   *query.OrderDetails
	Error   string
}

// InitialOrderDetails starts out loading so views never render an empty
// order before the first fetch.
func InitialOrderDetails() OrderDetailsState {
	return OrderDetailsState{Loading: true}
}

func ReduceOrderDetails(s OrderDetailsState, a Action) OrderDetailsState {
	switch a.Type {
	case OrderDetailsRequest:
		s.Loading = true
		return s
	case OrderDetailsSuccess:
		o, _ := a.Payload.(query.OrderDetails)
		return OrderDetailsState{Order: &o}
	case OrderDetailsFail:
		return OrderDetailsState{Error: a.Error}
	case OrderDetailsReset:
		return InitialOrderDetails()
	}
	return s
}

// OrderStatusState tracks a command whose only result is success, as with
// pay and deliver.
type OrderStatusState struct {
	Loading bool
	Success bool
	Error   string
}

func ReduceOrderPay(s OrderStatusState, a Action) OrderStatusState {
	return reduceStatus(s, a, OrderPayRequest, OrderPaySuccess, OrderPayFail, OrderPayReset)
}

func ReduceOrderDeliver(s OrderStatusState, a Action) OrderStatusState {
	return reduceStatus(s, a, OrderDeliverRequest, OrderDeliverSuccess, OrderDeliverFail, OrderDeliverReset)
}

func reduceStatus(s OrderStatusState, a Action, request, success, fail, reset ActionType) OrderStatusState {
	switch a.Type {
	case request:
		return OrderStatusState{Loading: true}
	case success:
		return OrderStatusState{Success: true}
	case fail:
		return OrderStatusState{Error: a.Error}
	case reset:
		return OrderStatusState{}
	}
	return s
}

type OrderListMyState struct {
	Loading bool
	Orders  []order.Order
	Error   string
}

func ReduceOrderListMy(s OrderListMyState, a Action) OrderListMyState {
	switch a.Type {
	case OrderListMyRequest:
		return OrderListMyState{Loading: true}
	case OrderListMySuccess:
		orders, _ := a.Payload.([]order.Order)
		return OrderListMyState{Orders: orders}
	case OrderListMyFail:
		return OrderListMyState{Error: a.Error}
	case OrderListMyReset:
		return OrderListMyState{Orders: []order.Order{}}
	}
	return s
}

type OrderListState struct {
	Loading bool
	Orders  []query.OrderDetails
	Error   string
}

func ReduceOrderList(s OrderListState, a Action) OrderListState {
	switch a.Type {
	case OrderListRequest:
		return OrderListState{Loading: true}
	case OrderListSuccess:
		orders, _ := a.Payload.([]query.OrderDetails)
		return OrderListState{Orders: orders}
	case OrderListFail:
		return OrderListState{Error: a.Error}
	case OrderListReset:
		return OrderListState{Orders: []query.OrderDetails{}}
	}
	return s
}
