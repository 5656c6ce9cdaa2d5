package shopify

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"shopify_sync_v1/pkg/apperr"
)

// defaultRetryAfter Retry-After 头缺失或无法解析时的兜底退避
const defaultRetryAfter = 2 * time.Second

// Client Shopify GraphQL Admin API 客户端
// 本层不做任何重试，所有错误原样返回给调用方决定退避策略
type Client struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	baseURL     string
	http        *resty.Client
}

// NormalizeDomain 归一化店铺域名
// 去掉协议前缀与结尾斜杠，统一转小写，用于精确匹配租户连接
func NormalizeDomain(domain string) string {
	d := strings.TrimSpace(strings.ToLower(domain))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	return strings.TrimSuffix(d, "/")
}

// NewClient 创建客户端
func NewClient(shopDomain, accessToken, apiVersion string) *Client {
	domain := NormalizeDomain(shopDomain)
	return &Client{
		shopDomain:  domain,
		accessToken: accessToken,
		apiVersion:  apiVersion,
		baseURL:     "https://" + domain,
		http:        resty.New().SetTimeout(30 * time.Second),
	}
}

// Query 执行一次 GraphQL 请求并把 data 解析到 out
// 状态码映射（按优先级）：
//
//	401 -> ConnectionError (token 无效)
//	402 -> ApiError (账单/套餐不可用)
//	403 -> ApiError (权限不足)
//	404 -> ConnectionError (店铺不存在)
//	429 -> RateLimitError (携带 Retry-After)
//	其他非 2xx -> ApiError
//	200 + errors 数组 -> ApiError (聚合全部消息)
//	200 + 无 data -> ApiError (空响应)
func (c *Client) Query(ctx context.Context, document string, variables map[string]interface{}, out interface{}) error {
	url := c.baseURL + "/admin/api/" + c.apiVersion + "/graphql.json"

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Shopify-Access-Token", c.accessToken).
		SetBody(graphQLRequest{Query: document, Variables: variables}).
		Post(url)
	if err != nil {
		return &apperr.ConnectionError{Message: err.Error()}
	}

	switch code := resp.StatusCode(); {
	case code == http.StatusUnauthorized:
		return &apperr.ConnectionError{Message: "访问令牌无效"}
	case code == http.StatusPaymentRequired:
		return apperr.NewApiError(code, "店铺账单/套餐不可用")
	case code == http.StatusForbidden:
		return apperr.NewApiError(code, "权限不足")
	case code == http.StatusNotFound:
		return &apperr.ConnectionError{Message: "店铺不存在: " + c.shopDomain}
	case code == http.StatusTooManyRequests:
		return &apperr.RateLimitError{RetryAfter: parseRetryAfter(resp.Header().Get("Retry-After"))}
	case code < 200 || code > 299:
		return apperr.NewApiError(code, string(resp.Body()))
	}

	var gqlResp graphQLResponse
	if err := json.Unmarshal(resp.Body(), &gqlResp); err != nil {
		return apperr.NewApiError(resp.StatusCode(), "响应解析失败: "+err.Error())
	}

	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
		}
		return apperr.NewApiError(resp.StatusCode(), msgs...)
	}

	if len(gqlResp.Data) == 0 || string(gqlResp.Data) == "null" {
		return apperr.NewApiError(resp.StatusCode(), "空响应")
	}

	if out != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return apperr.NewApiError(resp.StatusCode(), "data 解析失败: "+err.Error())
		}
	}
	return nil
}

// parseRetryAfter 解析 Retry-After 头（秒）
func parseRetryAfter(header string) time.Duration {
	sec, err := strconv.ParseFloat(strings.TrimSpace(header), 64)
	if err != nil || sec <= 0 {
		return defaultRetryAfter
	}
	return time.Duration(sec * float64(time.Second))
}

// ==================== 高层操作 ====================

// GetShopInfo 获取店铺信息
func (c *Client) GetShopInfo(ctx context.Context) (*RemoteShop, error) {
	var out struct {
		Shop RemoteShop `json:"shop"`
	}
	if err := c.Query(ctx, shopInfoQuery, nil, &out); err != nil {
		return nil, err
	}
	return &out.Shop, nil
}

// GetProducts 分页拉取商品
// cursor 为空表示第一页；分页必须串行（每页游标依赖上一页响应）
func (c *Client) GetProducts(ctx context.Context, pageSize int, cursor string) (*ProductPage, error) {
	vars := map[string]interface{}{"first": pageSize}
	if cursor != "" {
		vars["after"] = cursor
	}

	var out struct {
		Products struct {
			PageInfo pageInfo `json:"pageInfo"`
			Edges    []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	}
	if err := c.Query(ctx, productsQuery, vars, &out); err != nil {
		return nil, err
	}

	page := &ProductPage{
		HasNextPage: out.Products.PageInfo.HasNextPage,
		EndCursor:   out.Products.PageInfo.EndCursor,
	}
	for _, e := range out.Products.Edges {
		page.Items = append(page.Items, e.Node.toRemote())
	}
	return page, nil
}

// GetProduct 按 ID 获取单个商品
// 远端不存在时返回 (nil, nil)，不视为错误（统一承接删除事件）
func (c *Client) GetProduct(ctx context.Context, id string) (*RemoteProduct, error) {
	var out struct {
		Product *productNode `json:"product"`
	}
	if err := c.Query(ctx, productByIDQuery, map[string]interface{}{"id": id}, &out); err != nil {
		return nil, err
	}
	if out.Product == nil {
		return nil, nil
	}
	p := out.Product.toRemote()
	return &p, nil
}

// GetOrders 分页拉取订单，filter 为可选过滤串
func (c *Client) GetOrders(ctx context.Context, pageSize int, cursor, filter string) (*OrderPage, error) {
	vars := map[string]interface{}{"first": pageSize}
	if cursor != "" {
		vars["after"] = cursor
	}
	if filter != "" {
		vars["query"] = filter
	}

	var out struct {
		Orders struct {
			PageInfo pageInfo `json:"pageInfo"`
			Edges    []struct {
				Node orderNode `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	}
	if err := c.Query(ctx, ordersQuery, vars, &out); err != nil {
		return nil, err
	}

	page := &OrderPage{
		HasNextPage: out.Orders.PageInfo.HasNextPage,
		EndCursor:   out.Orders.PageInfo.EndCursor,
	}
	for _, e := range out.Orders.Edges {
		page.Items = append(page.Items, e.Node.toRemote())
	}
	return page, nil
}

// GetLocations 获取履约地点列表
func (c *Client) GetLocations(ctx context.Context) ([]RemoteLocation, error) {
	var out struct {
		Locations struct {
			Edges []struct {
				Node RemoteLocation `json:"node"`
			} `json:"edges"`
		} `json:"locations"`
	}
	if err := c.Query(ctx, locationsQuery, nil, &out); err != nil {
		return nil, err
	}
	locations := make([]RemoteLocation, 0, len(out.Locations.Edges))
	for _, e := range out.Locations.Edges {
		locations = append(locations, e.Node)
	}
	return locations, nil
}

// AdjustInventory 增量调整远端库存
func (c *Client) AdjustInventory(ctx context.Context, inventoryItemID, locationID string, delta int) error {
	vars := map[string]interface{}{
		"input": map[string]interface{}{
			"reason": "correction",
			"name":   "available",
			"changes": []map[string]interface{}{
				{
					"delta":           delta,
					"inventoryItemId": inventoryItemID,
					"locationId":      locationID,
				},
			},
		},
	}

	var out struct {
		InventoryAdjustQuantities struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"inventoryAdjustQuantities"`
	}
	if err := c.Query(ctx, inventoryAdjustMutation, vars, &out); err != nil {
		return err
	}
	return userErrorsToErr(out.InventoryAdjustQuantities.UserErrors)
}

// SetInventory 绝对值设置远端库存
// 负数钳制为 0；同样参数重复调用结果一致（幂等）
func (c *Client) SetInventory(ctx context.Context, inventoryItemID, locationID string, quantity int) error {
	if quantity < 0 {
		quantity = 0
	}
	vars := map[string]interface{}{
		"input": map[string]interface{}{
			"reason": "correction",
			"setQuantities": []map[string]interface{}{
				{
					"inventoryItemId": inventoryItemID,
					"locationId":      locationID,
					"quantity":        quantity,
				},
			},
		},
	}

	var out struct {
		InventorySetOnHandQuantities struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"inventorySetOnHandQuantities"`
	}
	if err := c.Query(ctx, inventorySetMutation, vars, &out); err != nil {
		return err
	}
	return userErrorsToErr(out.InventorySetOnHandQuantities.UserErrors)
}

// UpdateProduct 更新商品字段，nil 字段跳过
func (c *Client) UpdateProduct(ctx context.Context, productID string, input ProductUpdateInput) error {
	fields := map[string]interface{}{"id": productID}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Description != nil {
		fields["descriptionHtml"] = *input.Description
	}
	if input.Vendor != nil {
		fields["vendor"] = *input.Vendor
	}
	if input.ProductType != nil {
		fields["productType"] = *input.ProductType
	}

	var out struct {
		ProductUpdate struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"productUpdate"`
	}
	if err := c.Query(ctx, productUpdateMutation, map[string]interface{}{"input": fields}, &out); err != nil {
		return err
	}
	return userErrorsToErr(out.ProductUpdate.UserErrors)
}

// UpdateVariantPrice 更新变体价格
func (c *Client) UpdateVariantPrice(ctx context.Context, productID, variantID, price string) error {
	return c.updateVariants(ctx, productID, []map[string]interface{}{
		{"id": variantID, "price": price},
	})
}

// UpdateVariantSKU 更新变体 SKU
func (c *Client) UpdateVariantSKU(ctx context.Context, productID, variantID, sku string) error {
	return c.updateVariants(ctx, productID, []map[string]interface{}{
		{"id": variantID, "inventoryItem": map[string]interface{}{"sku": sku}},
	})
}

func (c *Client) updateVariants(ctx context.Context, productID string, variants []map[string]interface{}) error {
	vars := map[string]interface{}{
		"productId": productID,
		"variants":  variants,
	}

	var out struct {
		ProductVariantsBulkUpdate struct {
			UserErrors []userError `json:"userErrors"`
		} `json:"productVariantsBulkUpdate"`
	}
	if err := c.Query(ctx, variantsBulkUpdateMutation, vars, &out); err != nil {
		return err
	}
	return userErrorsToErr(out.ProductVariantsBulkUpdate.UserErrors)
}

// userErrorsToErr 把 GraphQL userErrors 聚合为 ApiError
func userErrorsToErr(errs []userError) error {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return apperr.NewApiError(http.StatusOK, msgs...)
}
