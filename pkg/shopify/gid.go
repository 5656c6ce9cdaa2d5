package shopify

import "strings"

// GraphQL 全局 ID 形如 gid://shopify/Product/123456
// 本地只存数字部分，webhook 的 REST 风格数字 ID 可直接匹配

// NumericID 取 GID 的数字尾段；非 GID 格式原样返回
func NumericID(gid string) string {
	idx := strings.LastIndex(gid, "/")
	if idx < 0 {
		return gid
	}
	return gid[idx+1:]
}

// GID 由资源类型与数字 ID 拼回全局 ID
func GID(resource, id string) string {
	return "gid://shopify/" + resource + "/" + id
}
