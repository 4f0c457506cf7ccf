package svg

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var drillCallPattern = regexp.MustCompile(`drillDown\(\s*['"]([^'"]+)['"]\s*\)`)

// Modules returns the drill-down targets found in a diagram, in document
// order without duplicates. Targets come from graph node titles
// (<g class="node"><title>name</title>), data-module attributes and
// drillDown('name') click handlers.
//
// The scan uses a tolerant HTML tokenizer so malformed backend output still
// yields whatever targets it contains.
func Modules(content string) []string {
	if content == "" {
		return nil
	}

	var (
		modules      []string
		seen         = make(map[string]bool)
		inNode       bool
		captureTitle bool
	)
	add := func(name string) {
		name = strings.TrimSpace(html.UnescapeString(name))
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		modules = append(modules, name)
	}

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or a tokenizer error; both end the scan.
			return modules

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			for _, attr := range tok.Attr {
				switch attr.Key {
				case "data-module":
					add(attr.Val)
				case "onclick":
					if m := drillCallPattern.FindStringSubmatch(attr.Val); m != nil {
						add(m[1])
					}
				}
			}
			switch tok.Data {
			case "g":
				inNode = hasClass(tok, "node")
			case "title":
				captureTitle = inNode && tt == html.StartTagToken
			}

		case html.TextToken:
			if captureTitle {
				add(string(z.Text()))
				captureTitle = false
				inNode = false
			}

		case html.EndTagToken:
			tok := z.Token()
			if tok.Data == "title" {
				captureTitle = false
			}

		case html.CommentToken, html.DoctypeToken:
		}
	}
}

func hasClass(tok html.Token, class string) bool {
	for _, attr := range tok.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
