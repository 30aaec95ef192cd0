// Package translate は英語記事の韓国語翻訳機能を提供する。
// Gemini APIによる翻訳を主経路とし、API未設定・障害時は
// 辞書ベースのフォールバック翻訳に切り替わる。
package translate

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// cacheEntry は翻訳キャッシュの1エントリ。
type cacheEntry struct {
	translation string
	storedAt    time.Time
}

// Cache は翻訳結果のインメモリキャッシュ。
// エントリはTTL経過で失効し、容量超過時は最も古いエントリから削除される。
// 失効チェックと容量削減はアクセス時に遅延実行される。
// 並行アクセスに対して安全である。
type Cache struct {
	mu       sync.Mutex
	entries  map[string]cacheEntry
	ttl      time.Duration
	capacity int
	now      func() time.Time // テスト時に差し替え可能
}

// NewCache はCacheの新しいインスタンスを生成する。
func NewCache(ttl time.Duration, capacity int) *Cache {
	return &Cache{
		entries:  make(map[string]cacheEntry),
		ttl:      ttl,
		capacity: capacity,
		now:      time.Now,
	}
}

// nonWordPattern はキャッシュキーの正規化で除去される文字。
var nonWordPattern = regexp.MustCompile(`[^\w\s]`)

// normalizeKey は原文をキャッシュキーに正規化する。
// 小文字化し、記号を除去し、連続空白を1つにまとめる。
// 句読点だけが異なる同一文が別エントリにならないようにする。
func normalizeKey(text string) string {
	key := strings.ToLower(strings.TrimSpace(text))
	key = nonWordPattern.ReplaceAllString(key, "")
	return strings.Join(strings.Fields(key), " ")
}

// Get は原文に対応するキャッシュ済み翻訳を返す。
// エントリが存在しない、またはTTLを経過している場合はfalseを返す。
// 失効エントリはこのタイミングで削除される。
func (c *Cache) Get(text string) (string, bool) {
	key := normalizeKey(text)
	if key == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(entry.storedAt) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return entry.translation, true
}

// Set は翻訳結果をキャッシュに保存する。
// 容量超過時は最も古いエントリを削除してから保存する。
func (c *Cache) Set(text, translation string) {
	key := normalizeKey(text)
	if key == "" || translation == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = cacheEntry{
		translation: translation,
		storedAt:    c.now(),
	}
}

// evictOldestLocked は最も古いエントリを1件削除する。
// 呼び出し側でロックを保持していること。
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range c.entries {
		if oldestKey == "" || entry.storedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.storedAt
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}

// Len は現在のエントリ数を返す。
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// CacheSnapshot は外部ストアとの同期に使用するキャッシュの静的コピー。
type CacheSnapshot map[string]CacheSnapshotEntry

// CacheSnapshotEntry はスナップショットの1エントリ。
type CacheSnapshotEntry struct {
	Translation string    `json:"translation"`
	StoredAt    time.Time `json:"storedAt"`
}

// Snapshot は現在の全エントリのコピーを返す。
// 失効済みエントリは含まれない。
func (c *Cache) Snapshot() CacheSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := make(CacheSnapshot, len(c.entries))
	for key, entry := range c.entries {
		if c.now().Sub(entry.storedAt) > c.ttl {
			continue
		}
		snapshot[key] = CacheSnapshotEntry{
			Translation: entry.translation,
			StoredAt:    entry.storedAt,
		}
	}
	return snapshot
}

// Restore はスナップショットからエントリを復元する。
// 既存エントリは上書きせず、失効済みエントリは取り込まない。
// 容量を超える分は取り込まれない。
func (c *Cache) Restore(snapshot CacheSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range snapshot {
		if len(c.entries) >= c.capacity {
			return
		}
		if _, exists := c.entries[key]; exists {
			continue
		}
		if c.now().Sub(entry.StoredAt) > c.ttl {
			continue
		}
		c.entries[key] = cacheEntry{
			translation: entry.Translation,
			storedAt:    entry.StoredAt,
		}
	}
}
