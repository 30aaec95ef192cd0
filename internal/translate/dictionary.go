package translate

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// hangulPattern はハングル文字の検出に使用する。
var hangulPattern = regexp.MustCompile(`[가-힣]`)

// ContainsHangul はテキストにハングル文字が含まれるかを返す。
// 既に韓国語のテキストは翻訳対象から除外される。
func ContainsHangul(text string) bool {
	return hangulPattern.MatchString(text)
}

// dictionary はフォールバック翻訳用の英韓対訳辞書。
// チーム名、選手名、バスケットボール用語を中心に収録する。
var dictionary = map[string]string{
	// チーム
	"Dallas Mavericks":       "댈러스 매버릭스",
	"Mavericks":              "매버릭스",
	"Mavs":                   "매버릭스",
	"Lakers":                 "레이커스",
	"Warriors":               "워리어스",
	"Celtics":                "셀틱스",
	"Thunder":                "썬더",
	"Timberwolves":           "팀버울브스",
	"Clippers":               "클리퍼스",
	"Suns":                   "선즈",
	"Nuggets":                "너기츠",
	"Spurs":                  "스퍼스",
	"Rockets":                "로키츠",
	"Grizzlies":              "그리즐리스",
	"Pelicans":               "펠리컨스",

	// 選手・関係者
	"Luka Doncic":            "루카 돈치치",
	"Kyrie Irving":           "카이리 어빙",
	"Anthony Davis":          "앤서니 데이비스",
	"Klay Thompson":          "클레이 탐슨",
	"Dereck Lively":          "데릭 라이블리",
	"Daniel Gafford":         "대니얼 개포드",
	"P.J. Washington":        "P.J. 워싱턴",
	"Jason Kidd":             "제이슨 키드",
	"Nico Harrison":          "니코 해리슨",

	// バスケットボール用語
	"trade":                  "트레이드",
	"trade deadline":         "트레이드 데드라인",
	"free agency":            "프리 에이전시",
	"free agent":             "프리 에이전트",
	"playoffs":               "플레이오프",
	"playoff":                "플레이오프",
	"regular season":         "정규 시즌",
	"preseason":              "프리시즌",
	"training camp":          "트레이닝 캠프",
	"injury":                 "부상",
	"injured":                "부상당한",
	"triple-double":          "트리플더블",
	"double-double":          "더블더블",
	"points":                 "득점",
	"rebounds":               "리바운드",
	"assists":                "어시스트",
	"steals":                 "스틸",
	"blocks":                 "블록",
	"three-pointer":          "3점슛",
	"clutch":                 "클러치",
	"buzzer-beater":          "버저비터",
	"MVP":                    "MVP",
	"All-Star":               "올스타",
	"rookie":                 "루키",
	"veteran":                "베테랑",
	"head coach":             "감독",
	"coach":                  "코치",
	"general manager":        "단장",
	"starting lineup":        "선발 라인업",
	"bench":                  "벤치",
	"roster":                 "로스터",
	"contract":               "계약",
	"extension":              "연장 계약",
	"win":                    "승리",
	"loss":                   "패배",
	"victory":                "승리",
	"defeat":                 "패배",
	"game":                   "경기",
	"season":                 "시즌",
	"championship":           "챔피언십",
	"NBA Finals":             "NBA 파이널",
	"Western Conference":     "서부 컨퍼런스",
	"Eastern Conference":     "동부 컨퍼런스",
}

// patternRule は文構造に対する置換ルール。
type patternRule struct {
	pattern *regexp.Regexp
	replace string
}

// patternRules は辞書置換後に適用される文パターンのルール。
// 英語の主語+動詞構造を韓国語の語順に寄せる。
var patternRules = []patternRule{
	{regexp.MustCompile(`(\S+) says`), "${1}의 발언:"},
	{regexp.MustCompile(`(\S+) reports`), "${1}의 보도:"},
	{regexp.MustCompile(`according to (\S+)`), "${1}에 따르면"},
	{regexp.MustCompile(`(\d+) points`), "${1}득점"},
	{regexp.MustCompile(`(\d+) rebounds`), "${1}리바운드"},
	{regexp.MustCompile(`(\d+) assists`), "${1}어시스트"},
}

// DictionaryTranslator は対訳辞書による簡易翻訳を行う。
// Gemini API未設定時および障害時のフォールバックとして使用される。
// 辞書に一致しない部分は原文のまま残る。
type DictionaryTranslator struct {
	replacements []replacement
}

// replacement はコンパイル済みの辞書置換エントリ。
type replacement struct {
	pattern *regexp.Regexp
	korean  string
}

var _ Translator = (*DictionaryTranslator)(nil)

// NewDictionaryTranslator はDictionaryTranslatorの新しいインスタンスを生成する。
// 辞書エントリは語句の長い順にコンパイルされる。
// 部分語句（"Mavericks"）より複合語句（"Dallas Mavericks"）を優先するため。
func NewDictionaryTranslator() *DictionaryTranslator {
	phrases := make([]string, 0, len(dictionary))
	for phrase := range dictionary {
		phrases = append(phrases, phrase)
	}
	sort.Slice(phrases, func(i, j int) bool {
		if len(phrases[i]) != len(phrases[j]) {
			return len(phrases[i]) > len(phrases[j])
		}
		return phrases[i] < phrases[j]
	})

	replacements := make([]replacement, 0, len(phrases))
	for _, phrase := range phrases {
		// 単語境界付きの大文字小文字無視マッチ
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
		replacements = append(replacements, replacement{
			pattern: pattern,
			korean:  dictionary[phrase],
		})
	}

	return &DictionaryTranslator{replacements: replacements}
}

// Translate は辞書置換による簡易翻訳を行う。
// 一致する語句が1つもない場合は原文をそのまま返す。エラーは返さない。
func (t *DictionaryTranslator) Translate(_ context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	if ContainsHangul(text) {
		return text, nil
	}

	result := text
	for _, r := range t.replacements {
		result = r.pattern.ReplaceAllString(result, r.korean)
	}
	for _, rule := range patternRules {
		result = rule.pattern.ReplaceAllString(result, rule.replace)
	}
	return result, nil
}

// TranslateBatch は複数テキストを順次辞書翻訳する。
func (t *DictionaryTranslator) TranslateBatch(ctx context.Context, texts []string) ([]string, error) {
	results := make([]string, len(texts))
	for i, text := range texts {
		translated, err := t.Translate(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("辞書翻訳に失敗 (index=%d): %w", i, err)
		}
		results[i] = translated
	}
	return results, nil
}

// Summarize は先頭から最大文字数で切り詰めた簡易要約を返す。
// 文の途中で切れないよう、上限内の最後の文末で打ち切る。
func (t *DictionaryTranslator) Summarize(_ context.Context, text string, maxLen int) (string, error) {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= maxLen {
		return string(runes), nil
	}

	truncated := runes[:maxLen]
	for i := len(truncated) - 1; i > 0; i-- {
		if truncated[i] == '.' || truncated[i] == '!' || truncated[i] == '?' {
			return string(truncated[:i+1]), nil
		}
	}
	return string(truncated) + "...", nil
}
