package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mavskr/newspipe/internal/model"
)

// PostgresTagRepo はPostgreSQLを使用したタグリポジトリ。
type PostgresTagRepo struct {
	db *sql.DB
}

// NewPostgresTagRepo はPostgresTagRepoを生成する。
func NewPostgresTagRepo(db *sql.DB) *PostgresTagRepo {
	return &PostgresTagRepo{db: db}
}

// EnsureByName は指定名のタグを取得し、存在しなければ作成して返す。
// 並行作成の競合はname一意制約のON CONFLICTで吸収する。
func (r *PostgresTagRepo) EnsureByName(ctx context.Context, name string) (*model.Tag, error) {
	tag := &model.Tag{ID: uuid.New().String(), Name: name}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO tags (id, name) VALUES ($1, $2)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id`,
		tag.ID, tag.Name,
	).Scan(&tag.ID)
	if err != nil {
		return nil, fmt.Errorf("タグの取得・作成に失敗しました: %w", err)
	}

	return tag, nil
}

// AttachToNews は記事にタグを付与する。既に付与済みの場合は何もしない。
func (r *PostgresTagRepo) AttachToNews(ctx context.Context, newsID, tagID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO news_tags (news_id, tag_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		newsID, tagID,
	)
	if err != nil {
		return fmt.Errorf("タグの付与に失敗しました: %w", err)
	}
	return nil
}

// ListByNews は記事に付与されたタグ一覧を返す。
func (r *PostgresTagRepo) ListByNews(ctx context.Context, newsID string) ([]*model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT t.id, t.name FROM tags t
		 JOIN news_tags nt ON nt.tag_id = t.id
		 WHERE nt.news_id = $1
		 ORDER BY t.name`,
		newsID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("タグ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var tags []*model.Tag
	for rows.Next() {
		tag := &model.Tag{}
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, fmt.Errorf("タグ行の読み取りに失敗しました: %w", err)
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("タグ一覧の走査に失敗しました: %w", err)
	}
	return tags, nil
}

// compile-time interface check
var _ TagRepository = (*PostgresTagRepo)(nil)
