package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Client define o contrato para qualquer serviço de cache usado pelos Repositórios e middlewares.
type Client interface {
	Get(ctx context.Context, key string) (string, error)
	GetInt(ctx context.Context, key string) (int, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
}

// ErrCacheMiss é retornado quando a chave não é encontrada no cache.
var ErrCacheMiss = redis.Nil

// RedisClient é a implementação concreta da interface Client, usando Redis.
type RedisClient struct {
	rdb *redis.Client
}

// NewRedisClient cria o cliente Redis. A conexão é preguiçosa; use Ping para verificá-la.
func NewRedisClient(addr string) *RedisClient {
	return NewFromRedis(redis.NewClient(&redis.Options{Addr: addr}))
}

// NewFromRedis embrulha um *redis.Client já configurado.
func NewFromRedis(rdb *redis.Client) *RedisClient {
	return &RedisClient{rdb: rdb}
}

// Ping verifica se o Redis está acessível.
func (c *RedisClient) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get recupera o valor associado a uma chave.
func (c *RedisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// GetInt recupera um contador numérico.
func (c *RedisClient) GetInt(ctx context.Context, key string) (int, error) {
	val, err := c.rdb.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, ErrCacheMiss
	}
	return val, err
}

// Set define um valor para uma chave com um tempo de expiração.
func (c *RedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Incr incrementa um contador e devolve o novo valor.
func (c *RedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return c.rdb.Incr(ctx, key).Result()
}

// Delete remove uma chave do cache.
func (c *RedisClient) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, key).Err()
}

// Close encerra o pool de conexões.
func (c *RedisClient) Close() error {
	return c.rdb.Close()
}
