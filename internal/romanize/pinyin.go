// Package romanize 提供输入文本的本地拼音标注。
// 远程 API 返回台语白话字，这里补充一份普通话读音作对照，
// 纯本地计算，不会失败。
package romanize

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
)

// Annotate 返回文本的带声调普通话拼音。
// 汉字之间以空格分隔，非汉字字符保持原样。
func Annotate(text string) string {
	args := pinyin.NewArgs()
	args.Style = pinyin.Tone

	var result strings.Builder
	var lastWasHanzi bool

	for _, char := range text {
		if unicode.Is(unicode.Han, char) {
			pinyins := pinyin.Pinyin(string(char), args)
			if len(pinyins) > 0 && len(pinyins[0]) > 0 {
				if lastWasHanzi {
					result.WriteString(" ")
				}
				result.WriteString(pinyins[0][0])
			}
			lastWasHanzi = true
		} else {
			// 非汉字字符保持原样
			result.WriteRune(char)
			lastWasHanzi = false
		}
	}

	return result.String()
}
