package translate

import (
	"context"
	"strings"
	"testing"
)

func TestContainsHangul(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"댈러스 매버릭스 승리", true},
		{"Luka 루카", true},
		{"Dallas Mavericks win", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := ContainsHangul(tt.text); got != tt.want {
			t.Errorf("ContainsHangul(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestDictionaryTranslateBasic(t *testing.T) {
	translator := NewDictionaryTranslator()

	got, err := translator.Translate(context.Background(), "Mavericks win the game")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "매버릭스") {
		t.Errorf("チーム名が変換されるはず: %q", got)
	}
	if !strings.Contains(got, "승리") {
		t.Errorf("winが変換されるはず: %q", got)
	}
}

func TestDictionaryLongestPhraseFirst(t *testing.T) {
	translator := NewDictionaryTranslator()

	// "Dallas Mavericks"は"Mavericks"単体より先に変換される
	got, err := translator.Translate(context.Background(), "Dallas Mavericks won")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "댈러스 매버릭스") {
		t.Errorf("複合語句が優先されるはず: %q", got)
	}
	if strings.Contains(got, "댈러스 매버릭스스") || strings.Contains(got, "Dallas 매버릭스") {
		t.Errorf("部分変換が起きてはいけない: %q", got)
	}
}

func TestDictionaryCaseInsensitive(t *testing.T) {
	translator := NewDictionaryTranslator()

	got, err := translator.Translate(context.Background(), "MAVERICKS beat the lakers")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "매버릭스") || !strings.Contains(got, "레이커스") {
		t.Errorf("大文字小文字を無視して変換されるはず: %q", got)
	}
}

func TestDictionaryWordBoundary(t *testing.T) {
	translator := NewDictionaryTranslator()

	// "wins"の中の"win"は単語境界に一致しないため変換されない
	got, err := translator.Translate(context.Background(), "winset")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "winset" {
		t.Errorf("単語の一部は変換されないはず: %q", got)
	}
}

func TestDictionaryPatternRules(t *testing.T) {
	translator := NewDictionaryTranslator()

	got, err := translator.Translate(context.Background(), "Kidd says the team is ready")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Kidd의 발언:") {
		t.Errorf("saysパターンが適用されるはず: %q", got)
	}
}

func TestDictionaryNoMatchPassthrough(t *testing.T) {
	translator := NewDictionaryTranslator()

	original := "completely unrelated text"
	got, err := translator.Translate(context.Background(), original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != original {
		t.Errorf("一致なしは原文のまま返すはず: %q", got)
	}
}

func TestDictionaryHangulPassthrough(t *testing.T) {
	translator := NewDictionaryTranslator()

	original := "매버릭스 관련 뉴스"
	got, err := translator.Translate(context.Background(), original)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != original {
		t.Errorf("既に韓国語のテキストはそのまま返すはず: %q", got)
	}
}

func TestDictionaryTranslateBatch(t *testing.T) {
	translator := NewDictionaryTranslator()

	texts := []string{"Mavericks win", "Lakers loss"}
	got, err := translator.TranslateBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(texts) {
		t.Fatalf("入力と同じ長さを返すはず: len=%d", len(got))
	}
	if !strings.Contains(got[0], "매버릭스") {
		t.Errorf("got[0] = %q", got[0])
	}
	if !strings.Contains(got[1], "레이커스") {
		t.Errorf("got[1] = %q", got[1])
	}
}

func TestDictionarySummarize(t *testing.T) {
	translator := NewDictionaryTranslator()

	short := "Short text."
	got, err := translator.Summarize(context.Background(), short, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != short {
		t.Errorf("上限以内はそのまま返すはず: %q", got)
	}

	long := strings.Repeat("This is a sentence. ", 20)
	got, err = translator.Summarize(context.Background(), long, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len([]rune(got)) > 103 {
		t.Errorf("上限付近で切り詰められるはず: len=%d", len([]rune(got)))
	}
	if !strings.HasSuffix(got, ".") && !strings.HasSuffix(got, "...") {
		t.Errorf("文末で打ち切られるはず: %q", got)
	}
}
