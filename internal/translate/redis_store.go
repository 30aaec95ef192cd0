package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// redisCacheKey は翻訳キャッシュスナップショットの保存先キー。
const redisCacheKey = "newspipe:translation-cache"

// RedisStore は翻訳キャッシュのRedisへの永続化を担う。
// プロセス再起動をまたいでキャッシュを引き継ぐためのベストエフォートな
// 仕組みであり、Redis障害時も翻訳処理自体は継続する。
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedisStore はRedisStoreの新しいインスタンスを生成する。
func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

// Hydrate はRedisからスナップショットを読み込みキャッシュに復元する。
// キーが存在しない場合は何もしない。読み込み失敗はログに記録し、
// エラーとしては扱わない。
func (s *RedisStore) Hydrate(ctx context.Context, cache *Cache) {
	data, err := s.client.Get(ctx, redisCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("翻訳キャッシュの読み込みに失敗しました", "error", err)
		}
		return
	}

	var snapshot CacheSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Warn("翻訳キャッシュスナップショットの解析に失敗しました", "error", err)
		return
	}

	cache.Restore(snapshot)
	s.logger.Info("翻訳キャッシュを復元しました", "entries", len(snapshot))
}

// Flush は現在のキャッシュ内容をRedisへ書き出す。
// TTLはキャッシュのTTLに揃えてRedis側でも失効させる。
func (s *RedisStore) Flush(ctx context.Context, cache *Cache) error {
	snapshot := cache.Snapshot()
	if len(snapshot) == 0 {
		return nil
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("翻訳キャッシュのシリアライズに失敗: %w", err)
	}

	if err := s.client.Set(ctx, redisCacheKey, data, cache.ttl).Err(); err != nil {
		return fmt.Errorf("翻訳キャッシュの書き込みに失敗: %w", err)
	}
	return nil
}
