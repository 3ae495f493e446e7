// Package state holds the storefront client state. Every slice is updated by
// a pure reducer: Reduce(prior, action) returns the next value and never
// mutates prior.
package state

type ActionType string

// Action is dispatched to every reducer. Payload carries the SUCCESS value
// (or the item for cart actions); Error carries the FAIL message.
type Action struct {
	Type    ActionType
	Payload any
	Error   string
}

// Cart
const (
	CartAddItem             ActionType = "CART_ADD_ITEM"
	CartRemoveItem          ActionType = "CART_REMOVE_ITEM"
	CartSaveShippingAddress ActionType = "CART_SAVE_SHIPPING_ADDRESS"
	CartSavePaymentMethod   ActionType = "CART_SAVE_PAYMENT_METHOD"
	CartReset               ActionType = "CART_RESET"
)

// Orders
const (
	OrderCreateRequest ActionType = "ORDER_CREATE_REQUEST"
	OrderCreateSuccess ActionType = "ORDER_CREATE_SUCCESS"
	OrderCreateFail    ActionType = "ORDER_CREATE_FAIL"
	OrderCreateReset   ActionType = "ORDER_CREATE_RESET"

	OrderDetailsRequest ActionType = "ORDER_DETAILS_REQUEST"
	OrderDetailsSuccess ActionType = "ORDER_DETAILS_SUCCESS"
	OrderDetailsFail    ActionType = "ORDER_DETAILS_FAIL"
	OrderDetailsReset   ActionType = "ORDER_DETAILS_RESET"

	OrderPayRequest ActionType = "ORDER_PAY_REQUEST"
	OrderPaySuccess ActionType = "ORDER_PAY_SUCCESS"
	OrderPayFail    ActionType = "ORDER_PAY_FAIL"
	OrderPayReset   ActionType = "ORDER_PAY_RESET"

	OrderDeliverRequest ActionType = "ORDER_DELIVER_REQUEST"
	OrderDeliverSuccess ActionType = "ORDER_DELIVER_SUCCESS"
	OrderDeliverFail    ActionType = "ORDER_DELIVER_FAIL"
	OrderDeliverReset   ActionType = "ORDER_DELIVER_RESET"

	OrderListMyRequest ActionType = "ORDER_LIST_MY_REQUEST"
	OrderListMySuccess ActionType = "ORDER_LIST_MY_SUCCESS"
	OrderListMyFail    ActionType = "ORDER_LIST_MY_FAIL"
	OrderListMyReset   ActionType = "ORDER_LIST_MY_RESET"

	OrderListRequest ActionType = "ORDER_LIST_REQUEST"
	OrderListSuccess ActionType = "ORDER_LIST_SUCCESS"
	OrderListFail    ActionType = "ORDER_LIST_FAIL"
	OrderListReset   ActionType = "ORDER_LIST_RESET"
)

// Products
const (
	ProductListRequest ActionType = "PRODUCT_LIST_REQUEST"
	ProductListSuccess ActionType = "PRODUCT_LIST_SUCCESS"
	ProductListFail    ActionType = "PRODUCT_LIST_FAIL"

	ProductCreateReviewRequest ActionType = "PRODUCT_CREATE_REVIEW_REQUEST"
	ProductCreateReviewSuccess ActionType = "PRODUCT_CREATE_REVIEW_SUCCESS"
	ProductCreateReviewFail    ActionType = "PRODUCT_CREATE_REVIEW_FAIL"
	ProductCreateReviewReset   ActionType = "PRODUCT_CREATE_REVIEW_RESET"
)

// Users
const (
	UserLoginRequest ActionType = "USER_LOGIN_REQUEST"
	UserLoginSuccess ActionType = "USER_LOGIN_SUCCESS"
	UserLoginFail    ActionType = "USER_LOGIN_FAIL"
	UserLogout       ActionType = "USER_LOGOUT"
)

// LogoutActions clears every slice that holds per-user data.
func LogoutActions() []Action {
	return []Action{
		{Type: UserLogout},
		{Type: CartReset},
		{Type: OrderCreateReset},
		{Type: OrderDetailsReset},
		{Type: OrderPayReset},
		{Type: OrderDeliverReset},
		{Type: OrderListMyReset},
		{Type: OrderListReset},
		{Type: ProductCreateReviewReset},
	}
}

// Fail builds the FAIL action for a family.
func Fail(t ActionType, err error) Action {
	return Action{Type: t, Error: err.Error()}
}

// Success builds the SUCCESS action for a family.
func Success(t ActionType, payload any) Action {
	return Action{Type: t, Payload: payload}
}
