package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mavskr/newspipe/internal/model"
)

// uniqueViolation はPostgreSQLの一意制約違反のエラーコード。
const uniqueViolation = "23505"

// PostgresNewsRepo はPostgreSQLを使用したニュースリポジトリ。
type PostgresNewsRepo struct {
	db *sql.DB
}

// NewPostgresNewsRepo はPostgresNewsRepoを生成する。
func NewPostgresNewsRepo(db *sql.DB) *PostgresNewsRepo {
	return &PostgresNewsRepo{db: db}
}

// newsColumns はSELECT句で使用するカラムリスト。scanNewsと順序を一致させること。
const newsColumns = `id, title, title_kr, content, content_kr, summary, summary_kr,
       source, source_url, author, image_url,
       published_at, crawled_at, view_count, created_at, updated_at`

// scanNews は1行分の結果をmodel.Newsに読み取る。
func scanNews(scan func(dest ...any) error) (*model.News, error) {
	news := &model.News{}
	var titleKR, contentKR, summary, summaryKR, author, imageURL sql.NullString
	var source string

	err := scan(
		&news.ID, &news.Title, &titleKR, &news.Content, &contentKR, &summary, &summaryKR,
		&source, &news.SourceURL, &author, &imageURL,
		&news.PublishedAt, &news.CrawledAt, &news.ViewCount, &news.CreatedAt, &news.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	news.Source = model.Source(source)
	if titleKR.Valid {
		news.TitleKR = &titleKR.String
	}
	if contentKR.Valid {
		news.ContentKR = &contentKR.String
	}
	if summary.Valid {
		news.Summary = &summary.String
	}
	if summaryKR.Valid {
		news.SummaryKR = &summaryKR.String
	}
	news.Author = author.String
	news.ImageURL = imageURL.String

	return news, nil
}

// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
func (r *PostgresNewsRepo) FindByID(ctx context.Context, id string) (*model.News, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+newsColumns+` FROM news WHERE id = $1`, id)

	news, err := scanNews(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	return news, nil
}

// FindBySourceURL はsource_urlで記事を検索する。見つからない場合はnilを返す。
func (r *PostgresNewsRepo) FindBySourceURL(ctx context.Context, sourceURL string) (*model.News, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+newsColumns+` FROM news WHERE source_url = $1`, sourceURL)

	news, err := scanNews(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("source_urlによる記事の検索に失敗しました: %w", err)
	}
	return news, nil
}

// Create は新規記事を作成する。
// source_urlの一意制約違反はmodel.ErrDuplicateSourceURLとして返す。
// 並行クロールで同一URLが同時に挿入された場合、片方はこのエラーで弾かれる。
func (r *PostgresNewsRepo) Create(ctx context.Context, news *model.News) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO news (id, title, title_kr, content, content_kr, summary, summary_kr,
		                   source, source_url, author, image_url,
		                   published_at, crawled_at, view_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())`,
		news.ID, news.Title, news.TitleKR, news.Content, news.ContentKR,
		nullableString(news.Summary), news.SummaryKR,
		string(news.Source), news.SourceURL, nullString(news.Author), nullString(news.ImageURL),
		news.PublishedAt, news.CrawledAt, news.ViewCount,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return model.ErrDuplicateSourceURL
		}
		return fmt.Errorf("記事の作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateMutable は既存記事の可変フィールドを更新する。
// 翻訳フィールド（*_kr）とcrawled_atには触れない。
func (r *PostgresNewsRepo) UpdateMutable(ctx context.Context, news *model.News) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE news SET
		    title = $2, content = $3, author = $4, image_url = $5, updated_at = now()
		 WHERE id = $1`,
		news.ID, news.Title, news.Content, nullString(news.Author), nullString(news.ImageURL),
	)
	if err != nil {
		return fmt.Errorf("記事の更新に失敗しました: %w", err)
	}
	return nil
}

// UpdateTranslation は記事の翻訳フィールドを更新する。
// contentKR/summaryKRがnilの場合は既存値を維持する部分更新を行う。
func (r *PostgresNewsRepo) UpdateTranslation(ctx context.Context, id string, titleKR string, contentKR, summaryKR *string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE news SET
		    title_kr = $2,
		    content_kr = COALESCE($3, content_kr),
		    summary_kr = COALESCE($4, summary_kr),
		    updated_at = now()
		 WHERE id = $1`,
		id, titleKR, contentKR, summaryKR,
	)
	if err != nil {
		return fmt.Errorf("翻訳結果の保存に失敗しました: %w", err)
	}
	return nil
}

// ListUntranslated はtitle_krが未設定の記事をpublished_at降順で最大limit件返す。
func (r *PostgresNewsRepo) ListUntranslated(ctx context.Context, limit int) ([]*model.News, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+newsColumns+` FROM news
		 WHERE title_kr IS NULL
		 ORDER BY published_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("未翻訳記事の一覧取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectNews(rows)
}

// List はフィルタ条件に合致する記事をpublished_at降順で返す。
func (r *PostgresNewsRepo) List(ctx context.Context, filter model.NewsFilter, limit, offset int) ([]*model.News, error) {
	query := `SELECT ` + newsColumns + ` FROM news`
	where, args := buildFilter(filter)
	query += where

	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY published_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	return collectNews(rows)
}

// Count はフィルタ条件に合致する記事数を返す。
func (r *PostgresNewsRepo) Count(ctx context.Context, filter model.NewsFilter) (int, error) {
	query := `SELECT count(*) FROM news`
	where, args := buildFilter(filter)
	query += where

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("記事数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// IncrementViewCount は記事の閲覧数を1増やす。
func (r *PostgresNewsRepo) IncrementViewCount(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE news SET view_count = view_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("閲覧数の更新に失敗しました: %w", err)
	}
	return nil
}

// buildFilter はNewsFilterからWHERE句とバインド引数を構築する。
func buildFilter(filter model.NewsFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Source != nil {
		args = append(args, string(*filter.Source))
		conds = append(conds, fmt.Sprintf("source = $%d", len(args)))
	}
	if filter.OnlyTranslated {
		conds = append(conds, "title_kr IS NOT NULL")
	}

	if len(conds) == 0 {
		return "", nil
	}
	where := " WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

// collectNews は複数行の結果をmodel.Newsのスライスに読み取る。
func collectNews(rows *sql.Rows) ([]*model.News, error) {
	var items []*model.News
	for rows.Next() {
		news, err := scanNews(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("記事行の読み取りに失敗しました: %w", err)
		}
		items = append(items, news)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("記事一覧の走査に失敗しました: %w", err)
	}
	return items, nil
}

// nullString は空文字列をNULLに変換する。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullableString は*stringをsql.NullStringに変換する。
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// compile-time interface check
var _ NewsRepository = (*PostgresNewsRepo)(nil)
