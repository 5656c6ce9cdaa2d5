package shopify

// shopInfoQuery 店铺基本信息
const shopInfoQuery = `
query getShopInfo {
  shop {
    id
    name
    myshopifyDomain
    currencyCode
  }
}
`

// productsQuery 分页拉取商品及变体
const productsQuery = `
query getProducts($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
        title
        description
        vendor
        productType
        status
        images(first: 10) {
          edges {
            node {
              url
            }
          }
        }
        variants(first: 100) {
          edges {
            node {
              id
              title
              sku
              price
              compareAtPrice
              inventoryQuantity
              inventoryItem {
                id
              }
            }
          }
        }
      }
    }
  }
}
`

// productByIDQuery 单商品查询，远端不存在时 product 为 null
const productByIDQuery = `
query getProduct($id: ID!) {
  product(id: $id) {
    id
    title
    description
    vendor
    productType
    status
    images(first: 10) {
      edges {
        node {
          url
        }
      }
    }
    variants(first: 100) {
      edges {
        node {
          id
          title
          sku
          price
          compareAtPrice
          inventoryQuantity
          inventoryItem {
            id
          }
        }
      }
    }
  }
}
`

// ordersQuery 分页拉取订单，query 为可选过滤串
const ordersQuery = `
query getOrders($first: Int!, $after: String, $query: String) {
  orders(first: $first, after: $after, query: $query) {
    pageInfo {
      hasNextPage
      endCursor
    }
    edges {
      node {
        id
        name
        createdAt
        totalPriceSet {
          shopMoney {
            amount
          }
        }
        lineItems(first: 100) {
          edges {
            node {
              title
              quantity
              variant {
                id
                price
                product {
                  id
                }
              }
            }
          }
        }
      }
    }
  }
}
`

// locationsQuery 履约地点列表
const locationsQuery = `
query getLocations {
  locations(first: 20) {
    edges {
      node {
        id
        name
        isActive
      }
    }
  }
}
`
