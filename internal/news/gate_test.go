package news

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mavskr/newspipe/internal/model"
	"github.com/mavskr/newspipe/internal/security"
)

// mockNewsRepo はNewsRepositoryのテスト用モック。
type mockNewsRepo struct {
	findBySourceURLFunc func(ctx context.Context, sourceURL string) (*model.News, error)
	createFunc          func(ctx context.Context, news *model.News) error
	updateMutableFunc   func(ctx context.Context, news *model.News) error
	created             []*model.News
	updated             []*model.News
}

func (m *mockNewsRepo) FindBySourceURL(ctx context.Context, sourceURL string) (*model.News, error) {
	if m.findBySourceURLFunc != nil {
		return m.findBySourceURLFunc(ctx, sourceURL)
	}
	return nil, nil
}

func (m *mockNewsRepo) Create(ctx context.Context, news *model.News) error {
	m.created = append(m.created, news)
	if m.createFunc != nil {
		return m.createFunc(ctx, news)
	}
	return nil
}

func (m *mockNewsRepo) UpdateMutable(ctx context.Context, news *model.News) error {
	m.updated = append(m.updated, news)
	if m.updateMutableFunc != nil {
		return m.updateMutableFunc(ctx, news)
	}
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCandidate() model.Candidate {
	return model.Candidate{
		Title:       "Mavericks win big",
		Content:     "<p>Great game.</p>",
		Source:      model.SourceESPN,
		SourceURL:   "https://www.espn.com/nba/story/1",
		PublishedAt: time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestGateSaveNew(t *testing.T) {
	repo := &mockNewsRepo{}
	gate := NewGate(repo, security.NewContentSanitizer(), testLogger())

	outcome, err := gate.Save(context.Background(), testCandidate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeSaved {
		t.Errorf("outcome = %v, want Saved", outcome)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created = %d", len(repo.created))
	}

	saved := repo.created[0]
	if saved.ID == "" {
		t.Error("IDが採番されるはず")
	}
	if saved.CrawledAt.IsZero() {
		t.Error("CrawledAtが設定されるはず")
	}
	if saved.TitleKR != nil {
		t.Error("新規保存時は未翻訳のはず")
	}
}

func TestGateSaveUpdatesExisting(t *testing.T) {
	existing := &model.News{
		ID:        "existing-id",
		Title:     "Old title",
		Content:   "Old content",
		Source:    model.SourceESPN,
		SourceURL: "https://www.espn.com/nba/story/1",
		CrawledAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
	titleKR := "기존 번역"
	existing.TitleKR = &titleKR

	repo := &mockNewsRepo{
		findBySourceURLFunc: func(_ context.Context, _ string) (*model.News, error) {
			return existing, nil
		},
	}
	gate := NewGate(repo, security.NewContentSanitizer(), testLogger())

	outcome, err := gate.Save(context.Background(), testCandidate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Errorf("outcome = %v, want Updated", outcome)
	}
	if len(repo.updated) != 1 {
		t.Fatalf("updated = %d", len(repo.updated))
	}

	// 翻訳フィールドは維持される
	if repo.updated[0].TitleKR == nil || *repo.updated[0].TitleKR != "기존 번역" {
		t.Error("既存の翻訳は維持されるはず")
	}
	if len(repo.created) != 0 {
		t.Error("既存記事は新規作成されないはず")
	}
}

func TestGateSaveSkipsUnchanged(t *testing.T) {
	candidate := testCandidate()
	sanitizer := security.NewContentSanitizer()
	existing := &model.News{
		ID:        "existing-id",
		Title:     sanitizer.SanitizeText(candidate.Title),
		Content:   sanitizer.SanitizeHTML(candidate.Content),
		Source:    model.SourceESPN,
		SourceURL: candidate.SourceURL,
	}
	repo := &mockNewsRepo{
		findBySourceURLFunc: func(_ context.Context, _ string) (*model.News, error) {
			return existing, nil
		},
	}
	gate := NewGate(repo, sanitizer, testLogger())

	outcome, err := gate.Save(context.Background(), candidate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeSkipped {
		t.Errorf("outcome = %v, want Skipped", outcome)
	}
	if len(repo.updated) != 0 {
		t.Error("変化のない記事は更新されないはず")
	}
}

func TestGateSaveDuplicateRace(t *testing.T) {
	repo := &mockNewsRepo{
		createFunc: func(_ context.Context, _ *model.News) error {
			return model.ErrDuplicateSourceURL
		},
	}
	gate := NewGate(repo, security.NewContentSanitizer(), testLogger())

	// 検索と作成の間に別処理が同一URLを保存したケース
	outcome, err := gate.Save(context.Background(), testCandidate())
	if err != nil {
		t.Fatalf("重複はエラーではなくスキップ扱いのはず: %v", err)
	}
	if outcome != OutcomeSkipped {
		t.Errorf("outcome = %v, want Skipped", outcome)
	}
}

func TestGateSaveSanitizesHTML(t *testing.T) {
	repo := &mockNewsRepo{}
	gate := NewGate(repo, security.NewContentSanitizer(), testLogger())

	candidate := testCandidate()
	candidate.Title = `Mavericks <script>alert(1)</script> win`
	candidate.Content = `<p>Good</p><script>alert(2)</script>`

	if _, err := gate.Save(context.Background(), candidate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	saved := repo.created[0]
	if saved.Title != "Mavericks  win" {
		t.Errorf("タイトルからタグが除去されるはず: %q", saved.Title)
	}
	if saved.Content != "<p>Good</p>" {
		t.Errorf("本文からscriptが除去されるはず: %q", saved.Content)
	}
}

func TestGateSaveRejectsEmptySourceURL(t *testing.T) {
	gate := NewGate(&mockNewsRepo{}, security.NewContentSanitizer(), testLogger())

	candidate := testCandidate()
	candidate.SourceURL = ""

	if _, err := gate.Save(context.Background(), candidate); err == nil {
		t.Error("source_url空はエラーを返すはず")
	}
}

func TestGateSaveRejectsInvalidSource(t *testing.T) {
	gate := NewGate(&mockNewsRepo{}, security.NewContentSanitizer(), testLogger())

	candidate := testCandidate()
	candidate.Source = model.Source("UNKNOWN")

	if _, err := gate.Save(context.Background(), candidate); err == nil {
		t.Error("不正なソースはエラーを返すはず")
	}
}

func TestGateSaveRepoError(t *testing.T) {
	repo := &mockNewsRepo{
		findBySourceURLFunc: func(_ context.Context, _ string) (*model.News, error) {
			return nil, errors.New("db down")
		},
	}
	gate := NewGate(repo, security.NewContentSanitizer(), testLogger())

	if _, err := gate.Save(context.Background(), testCandidate()); err == nil {
		t.Error("DB障害はエラーを返すはず")
	}
}

// mockTagger はTaggerのテスト用モック。
type mockTagger struct {
	attached map[string][]string
	err      error
}

func (m *mockTagger) AttachTags(_ context.Context, newsID string, names []string) error {
	if m.attached == nil {
		m.attached = make(map[string][]string)
	}
	m.attached[newsID] = append(m.attached[newsID], names...)
	return m.err
}

func TestGateSaveAttachesSourceTag(t *testing.T) {
	repo := &mockNewsRepo{}
	tagger := &mockTagger{}
	gate := NewGate(repo, security.NewContentSanitizer(), testLogger())
	gate.SetTagger(tagger)

	outcome, err := gate.Save(context.Background(), testCandidate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeSaved {
		t.Fatalf("outcome=%v", outcome)
	}
	if len(repo.created) != 1 {
		t.Fatalf("created=%d", len(repo.created))
	}

	tags := tagger.attached[repo.created[0].ID]
	if len(tags) != 1 || tags[0] != string(model.SourceESPN) {
		t.Errorf("tags=%v", tags)
	}
}

func TestGateSaveTaggerFailureDoesNotFailSave(t *testing.T) {
	repo := &mockNewsRepo{}
	tagger := &mockTagger{err: errors.New("tag insert failed")}
	gate := NewGate(repo, security.NewContentSanitizer(), testLogger())
	gate.SetTagger(tagger)

	outcome, err := gate.Save(context.Background(), testCandidate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeSaved {
		t.Errorf("outcome=%v", outcome)
	}
}
