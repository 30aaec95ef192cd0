package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Translator は英語テキストの韓国語翻訳機能を定義する。
type Translator interface {
	// Translate は単一テキストを韓国語に翻訳する。
	Translate(ctx context.Context, text string) (string, error)

	// TranslateBatch は複数テキストをまとめて翻訳する。
	// 返却スライスは入力と同じ長さ・同じ順序であることが保証される。
	TranslateBatch(ctx context.Context, texts []string) ([]string, error)

	// Summarize はテキストの韓国語要約を生成する。
	// 要約はmaxLen文字以内に収められる。
	Summarize(ctx context.Context, text string, maxLen int) (string, error)
}

// geminiEndpoint はGemini generateContent APIのURLテンプレート。
const geminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

// geminiMaxRetries はレート制限(429)時の最大リトライ回数。
const geminiMaxRetries = 3

// geminiTemperature は翻訳タスク用の生成温度。
// 創造性より安定した訳語の一貫性を優先する。
const geminiTemperature = 0.3

// geminiRequest はgenerateContent APIのリクエストボディ。
type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature float64 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

// geminiResponse はgenerateContent APIのレスポンスボディ。
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GeminiClient はGoogle Gemini APIによる翻訳クライアント。
// APIのレート制限を尊重するため、リクエストはrate.Limiterで調速される。
type GeminiClient struct {
	client   *http.Client
	apiKey   string
	model    string
	endpoint string // URLテンプレート。テスト時に差し替え可能
	limiter  *rate.Limiter
	logger   *slog.Logger
	// sleep はリトライ待機処理。テスト時に差し替え可能。
	sleep func(ctx context.Context, d time.Duration) error
}

var _ Translator = (*GeminiClient)(nil)

// NewGeminiClient はGeminiClientの新しいインスタンスを生成する。
func NewGeminiClient(client *http.Client, apiKey, model string, logger *slog.Logger) *GeminiClient {
	return &GeminiClient{
		client:   client,
		apiKey:   apiKey,
		model:    model,
		endpoint: geminiEndpoint,
		// 無料枠のレート制限(15 RPM)に収まるペースに調速する
		limiter: rate.NewLimiter(rate.Every(4*time.Second), 1),
		logger:  logger,
		sleep:   sleepContext,
	}
}

// sleepContext はコンテキストのキャンセルを尊重して待機する。
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Translate は単一テキストを韓国語に翻訳する。
func (g *GeminiClient) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	prompt := fmt.Sprintf(
		"다음 영어 텍스트를 자연스러운 한국어로 번역해주세요. NBA 농구 관련 내용입니다. 번역 결과만 출력하세요.\n\n%s",
		text,
	)
	result, err := g.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("Gemini翻訳に失敗: %w", err)
	}
	return strings.TrimSpace(result), nil
}

// TranslateBatch は複数テキストを1回のAPI呼び出しでまとめて翻訳する。
// 番号付きリスト形式でプロンプトを構築し、応答を行単位で分割する。
// 応答の行数が不足した場合、不足分は原文のまま返される。
func (g *GeminiClient) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var sb strings.Builder
	sb.WriteString("다음 영어 텍스트들을 자연스러운 한국어로 번역해주세요. NBA 농구 관련 내용입니다. ")
	sb.WriteString("각 번역을 번호와 함께 한 줄씩 출력하세요. 번역 결과만 출력하세요.\n\n")
	for i, text := range texts {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, text)
	}

	response, err := g.generate(ctx, sb.String())
	if err != nil {
		return nil, fmt.Errorf("Geminiバッチ翻訳に失敗: %w", err)
	}

	return parseNumberedResponse(response, texts), nil
}

// Summarize はテキストの韓国語要約を生成する。
func (g *GeminiClient) Summarize(ctx context.Context, text string, maxLen int) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	prompt := fmt.Sprintf(
		"다음 NBA 뉴스 기사를 한국어로 %d자 이내로 요약해주세요. 요약 결과만 출력하세요.\n\n%s",
		maxLen, text,
	)
	result, err := g.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("Gemini要約に失敗: %w", err)
	}

	summary := []rune(strings.TrimSpace(result))
	if len(summary) > maxLen {
		summary = summary[:maxLen]
	}
	return string(summary), nil
}

// generate はgenerateContent APIを呼び出し、最初の候補テキストを返す。
// 429応答時は待機時間を伸ばしながら最大geminiMaxRetries回リトライする。
func (g *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
	}
	reqBody.GenerationConfig.Temperature = geminiTemperature

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("リクエストのシリアライズに失敗: %w", err)
	}

	url := fmt.Sprintf(g.endpoint, g.model)

	var lastErr error
	for attempt := 1; attempt <= geminiMaxRetries; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("レートリミッタの待機に失敗: %w", err)
		}

		result, retryable, err := g.doRequest(ctx, url, payload)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}

		if attempt < geminiMaxRetries {
			delay := time.Duration(attempt) * 5 * time.Second
			g.logger.Warn("Gemini APIがレート制限を返したためリトライします",
				"attempt", attempt,
				"delay", delay,
			)
			if err := g.sleep(ctx, delay); err != nil {
				return "", err
			}
		}
	}
	return "", fmt.Errorf("リトライ上限に到達: %w", lastErr)
}

// doRequest は1回のAPI呼び出しを実行する。
// 2番目の返り値はリトライ可能なエラーかどうかを示す。
func (g *GeminiClient) doRequest(ctx context.Context, url string, payload []byte) (string, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", false, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("レスポンスの読み込みに失敗: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", true, fmt.Errorf("レート制限超過 (429)")
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("予期しないステータスコード: %d: %s", resp.StatusCode, truncateBody(body))
	}

	var response geminiResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", false, fmt.Errorf("レスポンスの解析に失敗: %w", err)
	}
	if len(response.Candidates) == 0 || len(response.Candidates[0].Content.Parts) == 0 {
		return "", false, fmt.Errorf("レスポンスに候補が含まれていません")
	}
	return response.Candidates[0].Content.Parts[0].Text, false, nil
}

// truncateBody はエラーメッセージ用にレスポンスボディを切り詰める。
func truncateBody(body []byte) string {
	const maxLen = 200
	s := string(body)
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	return s
}

// numberedSeparators は応答行の番号プレフィックスを除去する際の区切り文字。
var numberedSeparators = []string{". ", ".", ") ", ")"}

// parseNumberedResponse は番号付きリスト形式の応答を行単位で分割する。
// 応答が不足・欠落した行は原文で補完され、返却スライスは常に
// 入力と同じ長さになる。
func parseNumberedResponse(response string, originals []string) []string {
	results := make([]string, len(originals))
	copy(results, originals)

	lines := strings.Split(response, "\n")
	index := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if index >= len(originals) {
			break
		}
		results[index] = stripNumberPrefix(line)
		index++
	}
	return results
}

// stripNumberPrefix は行頭の"1. "や"2) "のような番号プレフィックスを除去する。
func stripNumberPrefix(line string) string {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 {
		return line
	}
	rest := line[i:]
	for _, sep := range numberedSeparators {
		if strings.HasPrefix(rest, sep) {
			return strings.TrimSpace(rest[len(sep):])
		}
	}
	return line
}
