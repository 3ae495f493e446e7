package state

import (
	"github.com/example/ec-storefront/internal/domain/product"
	"github.com/example/ec-storefront/internal/query"
)

type ProductListState struct {
	Loading  bool
	Products []product.Product
	Page     int
	Pages    int
	Error    string
}

func ReduceProductList(s ProductListState, a Action) ProductListState {
	switch a.Type {
	case ProductListRequest:
		return ProductListState{Loading: true, Products: []product.Product{}}
	case ProductListSuccess:
		page, _ := a.Payload.(query.ProductPage)
		return ProductListState{Products: page.Products, Page: page.Page, Pages: page.Pages}
	case ProductListFail:
		return ProductListState{Error: a.Error}
	}
	return s
}

type ProductReviewCreateState struct {
	Loading bool
	Success bool
	Error   string
}

func ReduceProductReviewCreate(s ProductReviewCreateState, a Action) ProductReviewCreateState {
	switch a.Type {
	case ProductCreateReviewRequest:
		return ProductReviewCreateState{Loading: true}
	case ProductCreateReviewSuccess:
		return ProductReviewCreateState{Success: true}
	case ProductCreateReviewFail:
		return ProductReviewCreateState{Error: a.Error}
	case ProductCreateReviewReset:
		return ProductReviewCreateState{}
	}
	return s
}
