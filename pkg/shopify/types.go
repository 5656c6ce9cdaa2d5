package shopify

import "encoding/json"

// ==================== GraphQL 传输结构 ====================

// graphQLRequest GraphQL 请求体
type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

// graphQLResponse GraphQL 响应体
// 注意：传输成功（200）时顶层仍可能携带 errors 数组
type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type userError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// ==================== 远端实体 ====================

// RemoteShop 店铺信息
type RemoteShop struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Domain       string `json:"myshopifyDomain"`
	CurrencyCode string `json:"currencyCode"`
}

// RemoteVariant 远端变体
type RemoteVariant struct {
	ID                string
	Title             string
	SKU               string
	Price             string // 十进制字符串，如 "12.34"
	CompareAtPrice    string
	InventoryQuantity int
	InventoryItemID   string
}

// RemoteProduct 远端商品
type RemoteProduct struct {
	ID          string
	Title       string
	Description string
	Vendor      string
	ProductType string
	Status      string // ACTIVE / DRAFT / ARCHIVED
	Images      []string
	Variants    []RemoteVariant
}

// ProductPage 商品分页结果
type ProductPage struct {
	Items       []RemoteProduct
	HasNextPage bool
	EndCursor   string
}

// RemoteLineItem 远端订单行
type RemoteLineItem struct {
	Title     string
	Quantity  int
	Price     string // 单价
	ProductID string
	VariantID string
}

// RemoteOrder 远端订单
type RemoteOrder struct {
	ID         string
	Name       string
	TotalPrice string
	CreatedAt  string
	LineItems  []RemoteLineItem
}

// OrderPage 订单分页结果
type OrderPage struct {
	Items       []RemoteOrder
	HasNextPage bool
	EndCursor   string
}

// RemoteLocation 履约地点
type RemoteLocation struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"isActive"`
}

// ProductUpdateInput 商品字段更新入参，nil 字段不更新
type ProductUpdateInput struct {
	Title       *string
	Description *string
	Vendor      *string
	ProductType *string
}

// ==================== 查询响应映射 ====================

type productNode struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Vendor      string `json:"vendor"`
	ProductType string `json:"productType"`
	Status      string `json:"status"`
	Images      struct {
		Edges []struct {
			Node struct {
				URL string `json:"url"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type variantNode struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	CompareAtPrice    string `json:"compareAtPrice"`
	InventoryQuantity int    `json:"inventoryQuantity"`
	InventoryItem     struct {
		ID string `json:"id"`
	} `json:"inventoryItem"`
}

func (n productNode) toRemote() RemoteProduct {
	p := RemoteProduct{
		ID:          n.ID,
		Title:       n.Title,
		Description: n.Description,
		Vendor:      n.Vendor,
		ProductType: n.ProductType,
		Status:      n.Status,
	}
	for _, e := range n.Images.Edges {
		p.Images = append(p.Images, e.Node.URL)
	}
	for _, e := range n.Variants.Edges {
		v := e.Node
		p.Variants = append(p.Variants, RemoteVariant{
			ID:                v.ID,
			Title:             v.Title,
			SKU:               v.SKU,
			Price:             v.Price,
			CompareAtPrice:    v.CompareAtPrice,
			InventoryQuantity: v.InventoryQuantity,
			InventoryItemID:   v.InventoryItem.ID,
		})
	}
	return p
}

type orderNode struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	CreatedAt     string `json:"createdAt"`
	TotalPriceSet struct {
		ShopMoney struct {
			Amount string `json:"amount"`
		} `json:"shopMoney"`
	} `json:"totalPriceSet"`
	LineItems struct {
		Edges []struct {
			Node struct {
				Title    string `json:"title"`
				Quantity int    `json:"quantity"`
				Variant  struct {
					ID    string `json:"id"`
					Price string `json:"price"`
					Product struct {
						ID string `json:"id"`
					} `json:"product"`
				} `json:"variant"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"lineItems"`
}

func (n orderNode) toRemote() RemoteOrder {
	o := RemoteOrder{
		ID:         n.ID,
		Name:       n.Name,
		CreatedAt:  n.CreatedAt,
		TotalPrice: n.TotalPriceSet.ShopMoney.Amount,
	}
	for _, e := range n.LineItems.Edges {
		o.LineItems = append(o.LineItems, RemoteLineItem{
			Title:     e.Node.Title,
			Quantity:  e.Node.Quantity,
			Price:     e.Node.Variant.Price,
			ProductID: e.Node.Variant.Product.ID,
			VariantID: e.Node.Variant.ID,
		})
	}
	return o
}
