// Package i18n translates issue codes into human-readable messages.
package i18n

import "sync/atomic"

// Translator retrieves localized messages for issue codes.
// data provides optional metadata to embed in the message (for example,
// "path" or "keys").
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"sink_write":        "failed to write output",
		"exceed_max_depth":  "maximum nesting depth exceeded",
		"cyclic_reference":  "cyclic reference",
		"missing_type_name": "no type name registered for polymorphic value",
		"type_mismatch":     "type mismatch",
		"conflicting_key":   "conflicting keys",
		"duplicate_key":     "duplicate key",
		"parse_error":       "parse error",
		"invalid_path":      "invalid path",
		"unsupported_type":  "unsupported type",
		"marshaler_failed":  "custom marshaler failed",
		"truncated":         "truncated",
	},
	"ja": {
		"sink_write":        "出力に失敗しました",
		"exceed_max_depth":  "ネストの深さが上限を超えました",
		"cyclic_reference":  "循環参照があります",
		"missing_type_name": "多態値の型名が登録されていません",
		"type_mismatch":     "型が一致しません",
		"conflicting_key":   "キーが衝突しています",
		"duplicate_key":     "キーが重複しています",
		"parse_error":       "解析エラー",
		"invalid_path":      "パスが不正です",
		"unsupported_type":  "未対応の型です",
		"marshaler_failed":  "独自シリアライザが失敗しました",
		"truncated":         "打ち切られました",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, _ map[string]string) string {
	if msg, ok := dictionaries[t.lang][code]; ok {
		return msg
	}
	return code
}

type holder struct{ tr Translator }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{tr: dictTranslator{lang: "en"}}) }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	current.Store(&holder{tr: dictTranslator{lang: lang}})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	current.Store(&holder{tr: tr})
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return current.Load().tr.Message(code, data) }
