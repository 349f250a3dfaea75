package article

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yhat/scrape"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/pribylovaa/fb-collector/internal/models"
)

// Маркеры разметки страницы статьи.
const (
	tagSelector      = "a.submeta__link"
	categorySelector = "a.signposting__action"
	headlineProp     = "headline"
	authorProp       = "author"
)

// extract собирает Article из независимых экстракторов.
// Каждый экстрактор при отсутствии маркера возвращает пустое значение
// и не влияет на остальные.
func extract(doc *goquery.Document, mainCategory string) *models.Article {
	root := doc.Get(0)

	return &models.Article{
		Tags:         extractTags(doc),
		Title:        extractHeadline(root),
		Authors:      extractAuthors(root),
		Categories:   extractCategories(doc),
		MainCategory: mainCategory,
	}
}

func extractTags(doc *goquery.Document) []string {
	var out []string
	doc.Find(tagSelector).Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			out = append(out, t)
		}
	})

	return out
}

// extractHeadline — первый элемент с itemprop="headline".
func extractHeadline(root *html.Node) string {
	if root == nil {
		return ""
	}

	n, ok := scrape.Find(root, byItemprop(headlineProp))
	if !ok {
		return ""
	}

	return strings.TrimSpace(scrape.Text(n))
}

// extractAuthors — все <span itemprop="author">.
func extractAuthors(root *html.Node) []string {
	if root == nil {
		return nil
	}

	var out []string
	for _, n := range scrape.FindAll(root, spanByItemprop(authorProp)) {
		if t := strings.TrimSpace(scrape.Text(n)); t != "" {
			out = append(out, t)
		}
	}

	return out
}

// extractCategories — метки рубрик в нижнем регистре, без повторов, в порядке появления.
func extractCategories(doc *goquery.Document) []string {
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{})

	var out []string
	doc.Find(categorySelector).Each(func(_ int, s *goquery.Selection) {
		c := lower.String(norm.NFC.String(strings.TrimSpace(s.Text())))
		if c == "" {
			return
		}

		if _, ok := seen[c]; ok {
			return
		}

		seen[c] = struct{}{}
		out = append(out, c)
	})

	return out
}

func byItemprop(prop string) scrape.Matcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && scrape.Attr(n, "itemprop") == prop
	}
}

func spanByItemprop(prop string) scrape.Matcher {
	return func(n *html.Node) bool {
		return n.DataAtom == atom.Span && scrape.Attr(n, "itemprop") == prop
	}
}
