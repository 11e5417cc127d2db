// Package tagcount 统计 HTML 文档中某个标签的出现次数。
//
// 只数开始标签（含自闭合形式），结束标签不计。标记本身残缺不报错；
// 只有字节流不是合法 UTF-8 时才返回 *DecodeError。
package tagcount

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ImageTag 是默认统计的标签。
const ImageTag = "img"

// 只有这两类元素的内容按原始文本处理；<title>、<textarea> 等内部的标签照常计数。
var rawTextTags = map[string]bool{"script": true, "style": true}

// DecodeError 表示页面字节流无法按 UTF-8 解码。仅影响当前页面。
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	if e == nil || e.Err == nil {
		return "页面不是合法的 UTF-8"
	}
	return "页面不是合法的 UTF-8：" + e.Err.Error()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Counter 对单个页面计数。
type Counter func(doc []byte) (int, error)

// ForSelector 按配置选择计数方式：selector 为空时数 <img>，否则数匹配 CSS 选择器的元素。
func ForSelector(selector string) Counter {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return CountImages
	}
	return func(doc []byte) (int, error) {
		return CountSelector(doc, selector)
	}
}

// CountImages 等价于 Count(doc, "img")。
func CountImages(doc []byte) (int, error) {
	return Count(doc, ImageTag)
}

// Count 返回 doc 中名为 tag 的开始标签数量。
//
// 标签名在分词时已统一为小写，因此匹配不区分大小写（<IMG> 也计入）。
// 除 script/style 外，元素内容都继续按标记分词。
func Count(doc []byte, tag string) (int, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return 0, fmt.Errorf("tag 不能为空")
	}

	z := html.NewTokenizer(strictUTF8(doc))
	n := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			err := z.Err()
			if errors.Is(err, io.EOF) {
				return n, nil
			}
			return 0, &DecodeError{Err: err}
		case html.StartTagToken:
			name, _ := z.TagName()
			if string(name) == tag {
				n++
			}
			if !rawTextTags[string(name)] {
				z.NextIsNotRawText()
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == tag {
				n++
			}
		}
	}
}

// CountSelector 返回 doc 中匹配 CSS 选择器的元素数量。
// 与 Count 一样先做 UTF-8 校验。
func CountSelector(doc []byte, selector string) (int, error) {
	selector = strings.TrimSpace(selector)
	if selector == "" {
		return 0, fmt.Errorf("selector 不能为空")
	}
	if _, err := io.Copy(io.Discard, strictUTF8(doc)); err != nil {
		return 0, &DecodeError{Err: err}
	}

	d, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return 0, err
	}
	return d.Find(selector).Length(), nil
}

func strictUTF8(doc []byte) io.Reader {
	return transform.NewReader(bytes.NewReader(doc), encoding.UTF8Validator)
}
