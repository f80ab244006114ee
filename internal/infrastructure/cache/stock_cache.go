package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tu-usuario/optica-pos/internal/application/stock"
	"github.com/tu-usuario/optica-pos/internal/domain/entity"
)

const (
	stockKeyPrefix = "stock:"
	stockKeyTTL    = 5 * time.Minute
)

var _ stock.StockCache = (*RedisStockCache)(nil)

// RedisStockCache caché de lectura del stock por producto. Guarda el snapshot
// completo de la consulta (no solo la cantidad) para que un hit responda sin
// ir a la BD. PostgreSQL es la fuente de verdad; el TTL acota cuánto puede
// vivir una lectura desfasada si una invalidación se pierde.
type RedisStockCache struct {
	client *redis.Client
}

// NewRedisStockCache construye el caché sobre un cliente redis.
func NewRedisStockCache(client *redis.Client) *RedisStockCache {
	return &RedisStockCache{client: client}
}

// stockSnapshot es la forma serializada de la proyección.
type stockSnapshot struct {
	ProductID    string `json:"product_id"`
	StoreID      string `json:"store_id"`
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	CurrentStock int    `json:"current_stock"`
	MinStock     int    `json:"min_stock"`
}

// GetProductStock devuelve el snapshot cacheado y si hubo hit.
func (c *RedisStockCache) GetProductStock(ctx context.Context, productID string) (*entity.Product, bool, error) {
	raw, err := c.client.Get(ctx, stockKeyPrefix+productID).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var snap stockSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false, err
	}
	return &entity.Product{
		ID:           snap.ProductID,
		StoreID:      snap.StoreID,
		SKU:          snap.SKU,
		Name:         snap.Name,
		CurrentStock: snap.CurrentStock,
		MinStock:     snap.MinStock,
	}, true, nil
}

// SetProductStock fija el snapshot cacheado de un producto.
func (c *RedisStockCache) SetProductStock(ctx context.Context, product *entity.Product) error {
	raw, err := json.Marshal(stockSnapshot{
		ProductID:    product.ID,
		StoreID:      product.StoreID,
		SKU:          product.SKU,
		Name:         product.Name,
		CurrentStock: product.CurrentStock,
		MinStock:     product.MinStock,
	})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, stockKeyPrefix+product.ID, raw, stockKeyTTL).Err()
}

// Invalidate borra las claves de los productos indicados tras una mutación.
func (c *RedisStockCache) Invalidate(ctx context.Context, productIDs ...string) error {
	if len(productIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(productIDs))
	for _, id := range productIDs {
		keys = append(keys, stockKeyPrefix+id)
	}
	return c.client.Del(ctx, keys...).Err()
}
