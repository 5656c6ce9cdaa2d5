package shopify

// inventoryAdjustMutation 增量调整库存
const inventoryAdjustMutation = `
mutation adjustInventory($input: InventoryAdjustQuantitiesInput!) {
  inventoryAdjustQuantities(input: $input) {
    userErrors {
      field
      message
    }
  }
}
`

// inventorySetMutation 绝对值设置库存（幂等）
const inventorySetMutation = `
mutation setInventory($input: InventorySetOnHandQuantitiesInput!) {
  inventorySetOnHandQuantities(input: $input) {
    userErrors {
      field
      message
    }
  }
}
`

// productUpdateMutation 更新商品字段
const productUpdateMutation = `
mutation updateProduct($input: ProductInput!) {
  productUpdate(input: $input) {
    product {
      id
    }
    userErrors {
      field
      message
    }
  }
}
`

// variantsBulkUpdateMutation 更新变体价格/SKU
const variantsBulkUpdateMutation = `
mutation updateVariants($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
  productVariantsBulkUpdate(productId: $productId, variants: $variants) {
    productVariants {
      id
    }
    userErrors {
      field
      message
    }
  }
}
`
